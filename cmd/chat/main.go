package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"chatbot-backend/internal/models"
)

var (
	serverURL = flag.String("url", "http://localhost:8080", "Chatbot server base URL")
	timeout   = flag.Duration("timeout", 5*time.Minute, "Timeout for a single reply")
)

// chatClient talks to /api/chat and carries the history between turns, the same way
// the browser page does.
type chatClient struct {
	baseURL    string
	httpClient *http.Client
	history    []models.ChatTurn
}

func newChatClient(baseURL string, timeout time.Duration) *chatClient {
	return &chatClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *chatClient) send(ctx context.Context, message string) (string, error) {
	history := c.history
	if history == nil {
		history = []models.ChatTurn{}
	}
	body, err := json.Marshal(map[string]interface{}{
		"message": message,
		"history": history,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("server error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("server error (status %d)", resp.StatusCode)
	}

	var chatResp models.ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	c.history = chatResp.History
	return chatResp.Reply, nil
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	client := newChatClient(*serverURL, *timeout)

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Println(boldGreen("AI Chatbot 2025"))
	fmt.Printf("Server: %s\n", boldCyan(client.baseURL))
	fmt.Println("Type your message and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" {
			break
		}

		reply, err := client.send(ctx, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
			continue
		}

		fmt.Print(boldCyan("Assistant: "))
		fmt.Println(reply)
		fmt.Println()
	}
}
