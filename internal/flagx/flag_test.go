package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "http://localhost:54321", "-x", "junk"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://localhost:54321"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=plaza.json", "-k=anon"},
			allowed: []string{"--config", "-k"},
			want:    []string{"--config=plaza.json", "-k=anon"},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-a", "-k", "anon"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "addr"},
			allowed: []string{"-b"},
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FilterArgs(tc.args, tc.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"plaza", "-c", "conf.json", "-a", "addr"}
	require.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"plaza", "-config=other.json"}
	require.Equal(t, "other.json", JsonConfigFlags())

	os.Args = []string{"plaza", "-a", "addr"}
	require.Equal(t, "", JsonConfigFlags())
}
