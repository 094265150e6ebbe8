package mcpserver

import (
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/josephgoksu/corpusgraph/internal/store"
)

func TestRegisterToolsDoesNotPanic(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	handler := command.NewHandler(st, nil)
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "corpus-graph-engine", Version: "test"}, nil)

	require.NotPanics(t, func() {
		RegisterTools(server, handler)
	})
}
