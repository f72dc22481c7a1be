package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feckmell/instanceregistry/domain"
)

func TestOverridesMap_PutGetDelete(t *testing.T) {
	m := newOverridesMap()
	defer m.Close()

	_, ok := m.Get("1")
	assert.False(t, ok)

	m.Put("1", domain.StatusOutOfService)
	got, ok := m.Get("1")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusOutOfService, got)

	assert.True(t, m.Delete("1"))
	assert.False(t, m.Delete("1"))
	_, ok = m.Get("1")
	assert.False(t, ok)
}
