package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var serverFlags = Owned{
	Valued:   []string{"a", "d", "s", "t", "o", "l"},
	Switches: []string{"seed-admin"},
}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		owned Owned
		want  []string
	}{
		{
			name:  "valued flags keep their values",
			args:  []string{"-a", ":3001", "-d", "postgres://db/ak"},
			owned: serverFlags,
			want:  []string{"-a", ":3001", "-d", "postgres://db/ak"},
		},
		{
			name:  "config file flags belong to another layer",
			args:  []string{"-c", "server.json", "-s", "k3y", "-config=other.json"},
			owned: serverFlags,
			want:  []string{"-s", "k3y"},
		},
		{
			name:  "switch never takes the next argument",
			args:  []string{"-seed-admin", "false", "-o", "http://ui.local"},
			owned: serverFlags,
			want:  []string{"-seed-admin", "-o", "http://ui.local"},
		},
		{
			name:  "switch with explicit value",
			args:  []string{"--seed-admin=false", "-l", "debug"},
			owned: serverFlags,
			want:  []string{"--seed-admin=false", "-l", "debug"},
		},
		{
			name:  "double dash spelling",
			args:  []string{"--o", "http://a,http://b", "--t=30"},
			owned: serverFlags,
			want:  []string{"--o", "http://a,http://b", "--t=30"},
		},
		{
			name:  "valued flag takes a dash-led value like flag.FlagSet",
			args:  []string{"-o", "-weird-origin", "-a", ":9"},
			owned: serverFlags,
			want:  []string{"-o", "-weird-origin", "-a", ":9"},
		},
		{
			name:  "valued flag at the end",
			args:  []string{"-l"},
			owned: serverFlags,
			want:  []string{"-l"},
		},
		{
			name:  "filtering stops at double dash",
			args:  []string{"-a", ":1", "--", "-a", ":2"},
			owned: serverFlags,
			want:  []string{"-a", ":1"},
		},
		{
			name:  "three dashes and bare dashes are not flags",
			args:  []string{"---a", ":1", "-", "--"},
			owned: serverFlags,
			want:  []string{},
		},
		{
			name:  "positionals and foreign flags dropped",
			args:  []string{"serve", "-x", "1", "--y=2"},
			owned: serverFlags,
			want:  []string{},
		},
		{
			name:  "client set does not own server switches",
			args:  []string{"-a", "http://127.0.0.1:3001", "-seed-admin", "-t", "5"},
			owned: Owned{Valued: []string{"a", "d", "t", "l"}},
			want:  []string{"-a", "http://127.0.0.1:3001", "-t", "5"},
		},
		{
			name:  "empty args",
			args:  []string{},
			owned: serverFlags,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.owned))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"authkeeper-server", "-c", "/etc/authkeeper/server.json"}, "/etc/authkeeper/server.json"},
		{"long with equals", []string{"authkeeper-server", "-config=/etc/ak.json", "-a", ":3001"}, "/etc/ak.json"},
		{"among server flags", []string{"authkeeper-server", "-seed-admin", "-c", "seed.json", "-s", "k"}, "seed.json"},
		{"last wins", []string{"authkeeper", "-c", "one.json", "--config", "two.json"}, "two.json"},
		{"absent", []string{"authkeeper", "-a", "http://127.0.0.1:3001"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}
