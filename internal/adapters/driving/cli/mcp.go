package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve triage tools to MCP clients",
	Long: `Serve chat, retrieve, ingest_profile and list_alerts as MCP tools, and
stored profiles as postop://patients resources.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants expect:

  {"mcpServers": {"postop": {"command": "postop", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport instead, for the MCP
Inspector or remote clients. --host defaults to localhost.`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "localhost", "HTTP bind host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Chat:      chatService,
		Retrieval: retrievalService,
		Ingest:    ingestService,
		Alerts:    alertService,
		Patients:  patientService,
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	server, err := mcp.NewServer(mcpPorts(), mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
