package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	catalogx "github.com/tanpawarit/ai-toolkit/agent/catalog"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
	servicex "github.com/tanpawarit/ai-toolkit/agent/service"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the schema and memory tools over MCP on stdio",
	Long: `mcp exposes the same tools the model uses during generation
(list_namespaces, list_relations, describe_relation, get_memory, set_memory)
to any MCP client over stdin/stdout. Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	memory, err := memoryx.Open(ctx, *s.memory, db, *s.upstash)
	if err != nil {
		return err
	}

	registry, err := servicex.GenerateTools(catalogx.New(db), memory)
	if err != nil {
		return err
	}
	log.Info().Strs("tools", registry.Names()).Msg("serving mcp on stdio")
	return server.ServeStdio(registry.MCPServer("ai-toolkit", resolvedVersion()))
}
