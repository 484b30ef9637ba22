package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until a local church-web server answers /status",
	Long: `Poll http://localhost:<port>/status until it answers with a 2xx status.

A server answers 503 on /status while its database is unreachable or before a
policy is loaded, so a successful wait means the server can make decisions.

Example:
  churchctl wait
  churchctl wait --port 3000 --retries 60 --interval 500ms`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")
		interval, _ := cmd.Flags().GetDuration("interval")

		fmt.Print("Waiting for church-web")
		err := waitForServer(fmt.Sprintf("http://localhost:%d/status", port), retries, interval)
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("church-web is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", 8080, "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of attempts")
	waitCmd.Flags().Duration("interval", time.Second, "Delay between attempts")
}

// waitForServer requests url up to attempts times and returns nil on the
// first 2xx answer.
func waitForServer(url string, attempts int, interval time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}

	for attempt := 1; attempt <= attempts; attempt++ {
		if ready(client, url) {
			return nil
		}
		if attempt < attempts {
			fmt.Print(".")
			time.Sleep(interval)
		}
	}
	return fmt.Errorf("no 2xx from %s after %d attempts", url, attempts)
}

func ready(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
