package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryBuildsRepositoriesOnce(t *testing.T) {
	f := NewFactory(nil)

	first := f.GetRepositories()
	require.NotNil(t, first)
	require.NotNil(t, first.User)
	require.NotNil(t, first.Image)

	second := f.GetRepositories()
	assert.Same(t, first, second)
}

func TestFactoryAccessorsReturnSharedInstances(t *testing.T) {
	f := NewFactory(nil)

	repos := f.GetRepositories()
	assert.Equal(t, repos.User, f.GetUserRepository())
	assert.Equal(t, repos.Image, f.GetImageRepository())
}
