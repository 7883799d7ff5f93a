package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{name: "none", args: []string{"server"}},
		{name: "equals form", args: []string{"--config=/tmp/a.yaml", "server"}, want: "/tmp/a.yaml"},
		{name: "separate value", args: []string{"server", "--config", "b.toml"}, want: "b.toml"},
		{name: "dangling flag", args: []string{"--config"}},
		{name: "env fallback", args: []string{"server"}, env: "c.json", want: "c.json"},
		{name: "flag beats env", args: []string{"--config=d.json"}, env: "c.json", want: "d.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VINJECT_CONFIG", tt.env)
			assert.Equal(t, tt.want, findUserConfig(tt.args))
		})
	}
}
