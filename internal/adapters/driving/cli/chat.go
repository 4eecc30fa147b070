package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/postop/internal/core/domain"
)

var chatJSON bool

var chatCmd = &cobra.Command{
	Use:   "chat PATIENT_ID [MESSAGE]",
	Short: "Ask a question as a patient",
	Long: `Answers a patient's message from their indexed profile and triages it.

Without MESSAGE, lines are read from standard input until EOF or "exit".
Each line is an independent turn; no conversation history is kept.

A level 3 reply with alert set records an alert for the care team.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output each turn as JSON")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	patientID := args[0]
	if len(args) == 2 {
		return chatTurn(cmd, patientID, args[1])
	}

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Printf("Chatting as %s. Type 'exit' to quit.\n", patientID)
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := chatTurn(cmd, patientID, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func chatTurn(cmd *cobra.Command, patientID, message string) error {
	resp, err := chatService.Chat(cmd.Context(), domain.ChatRequest{
		PatientID: patientID,
		Message:   message,
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if chatJSON {
		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputChatTurn(cmd, resp)
	return nil
}

func outputChatTurn(cmd *cobra.Command, resp *domain.ChatResponse) {
	level := "-"
	if resp.TriageLevel != nil {
		level = fmt.Sprintf("%d", *resp.TriageLevel)
	}
	cmd.Printf("[triage %s] %s\n", level, resp.Answer)
	if resp.TriageLevel != nil && *resp.TriageLevel >= domain.TriageFollowUp && resp.ContactHint != "" {
		cmd.Printf("  Contact: %s\n", resp.ContactHint)
	}
	if resp.AlertSent {
		cmd.Println("  ALERT: the care team has been notified.")
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
