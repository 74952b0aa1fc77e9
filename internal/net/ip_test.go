package net

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutgoingIP(t *testing.T) {
	ip := net.ParseIP(OutgoingIP())

	assert.NotNil(t, ip)
	assert.NotNil(t, ip.To4())
}
