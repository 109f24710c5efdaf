package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(participantsCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(joinedCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var participantsCmd = &cobra.Command{
	Use:   "participants [match-id]",
	Short: "List the participants of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("match id must be a number: %w", err)
		}
		return performGetRequest("/matches/" + args[0] + "/participants")
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Show the points leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/rankings")
	},
}

var joinedCmd = &cobra.Command{
	Use:   "joined",
	Short: "List the matches the user has joined",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/me/joined")
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the user's MatchCoins balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/me/balance")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join [match-id]",
	Short: "Join a match (costs 1 MatchCoin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("match id must be a number: %w", err)
		}
		return performPostRequest("/rpc/join-match", fmt.Sprintf(`{"match_id":%d}`, matchID))
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave [match-id]",
	Short: "Leave a match (refunds 1 MatchCoin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("match id must be a number: %w", err)
		}
		return performPostRequest("/rpc/leave-match", fmt.Sprintf(`{"match_id":%d}`, matchID))
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant [amount]",
	Short: "Credit MatchCoins to the user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("amount must be a number: %w", err)
		}
		return performPostRequest("/rpc/add-tokens", fmt.Sprintf(`{"amount":%d}`, amount))
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Run the sweep that finalizes past-date matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/finalize-expired", "")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest("POST", url, bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
