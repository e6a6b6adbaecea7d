package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// serverArgs resembles a full server command line shared by several
// components.
var serverArgs = []string{"-c", "ks.json", "-a", ":9000", "-e=false", "-t", "5", "-k", "holder.key", "positional"}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config flag only",
			args:    serverArgs,
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "ks.json"},
		},
		{
			name:    "client flags keep order",
			args:    serverArgs,
			allowed: []string{"-a", "-t", "-k"},
			want:    []string{"-a", ":9000", "-t", "5", "-k", "holder.key"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "x"},
			allowed: []string{"-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "value flag at the end has no value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-notvalue"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "repeated flag preserved",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "nothing owned",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestSpec_Filter_Bools(t *testing.T) {
	spec := Spec{Values: []string{"-a", "-t"}, Bools: []string{"-e"}}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "server line",
			args: serverArgs,
			want: []string{"-a", ":9000", "-e=false", "-t", "5"},
		},
		{
			name: "bool does not swallow the next value flag",
			args: []string{"-e", "-a", ":9000"},
			want: []string{"-e", "-a", ":9000"},
		},
		{
			name: "bool does not swallow a positional",
			args: []string{"-e", "positional", "-t", "5"},
			want: []string{"-e", "-t", "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spec.Filter(tt.args))
		})
	}
}

func TestConfigFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"bin", "-c", "/etc/keyshare/short.json"}, "/etc/keyshare/short.json"},
		{"long", []string{"bin", "-config", "/etc/keyshare/long.json"}, "/etc/keyshare/long.json"},
		{"absent", []string{"bin", "-a", ":9000", "-e=false"}, ""},
		{"last wins", []string{"bin", "-c", "1.json", "-config", "2.json"}, "2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, ConfigFile())
		})
	}
}
