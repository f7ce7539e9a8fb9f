package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeConnectionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RuntimeConnectionError
		want string
	}{
		{
			name: "with socket",
			err:  &RuntimeConnectionError{Backend: "docker", SocketPath: "unix:///var/run/docker.sock", Operation: "Ping", Err: errors.New("refused")},
			want: "docker Ping failed (socket: unix:///var/run/docker.sock): refused",
		},
		{
			name: "without socket",
			err:  &RuntimeConnectionError{Backend: "podman", Operation: "ListContainers", Err: errors.New("boom")},
			want: "podman ListContainers failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNotFoundError_Is(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{ContainerID: "abc123"})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "lookup: container abc123 not found", err.Error())
}

func TestStreamError_Unwrap(t *testing.T) {
	cause := errors.New("no such container")
	err := &StreamError{ContainerID: "abc123", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "abc123")
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"runtime connection", &RuntimeConnectionError{Backend: "docker", Operation: "Ping", Err: errors.New("x")}, true},
		{"wrapped configuration", fmt.Errorf("load: %w", &ConfigurationError{ConfigPath: "config.yaml", Err: errors.New("x")}), true},
		{"not found", &NotFoundError{ContainerID: "x"}, false},
		{"stream", &StreamError{ContainerID: "x", Err: errors.New("x")}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}
