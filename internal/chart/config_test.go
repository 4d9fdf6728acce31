package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/pkg/utils"
)

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(utils.ProviderConfig{Kind: "node", NodeBinary: "/usr/bin/node", ModuleDir: "/srv/iztro", Timeout: 3 * time.Second})
	require.NoError(t, err)
	node, ok := p.(*NodeProvider)
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/node", node.Binary)
	assert.Equal(t, 3*time.Second, node.Timeout)

	p, err = FromConfig(utils.ProviderConfig{Kind: "File", FixtureDir: "testdata", Fallback: "sample.json"})
	require.NoError(t, err)
	assert.Equal(t, &FileProvider{Dir: "testdata", Fallback: "sample.json"}, p)

	_, err = FromConfig(utils.ProviderConfig{Kind: "file"})
	assert.Error(t, err)

	_, err = FromConfig(utils.ProviderConfig{Kind: "python"})
	assert.Error(t, err)
}
