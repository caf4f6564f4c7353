// riskctl is a command line client for the transaction risk API. It
// supports scoring single transactions, batch files, and inspecting the
// loaded model.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/api"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/common"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv(common.EnvAPIURL)
	if baseURL == "" {
		baseURL = common.DefaultAPIURL
	}
	client := api.NewClient(baseURL, 30*time.Second)

	var err error
	switch os.Args[1] {
	case "health":
		err = runHealth(client)
	case "info":
		err = runInfo(client)
	case "predict":
		err = runPredict(client, os.Args[2:])
	case "batch":
		err = runBatch(client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: riskctl <command> [flags]

commands:
  health                     check API availability
  info                       show loaded model details
  predict [flags]            score a single transaction
  batch -file <path>         score a JSON file of transactions

predict flags:
  -amount     transaction amount (required)
  -customer   customer ID
  -time       transaction timestamp (RFC3339)
  -foreign    foreign transaction (yes/no)
  -highrisk   high risk country (yes/no)
  -prevfraud  previous fraud flag (yes/no)

The API base URL comes from %s (default %s).
`, common.EnvAPIURL, common.DefaultAPIURL)
}

func runHealth(client *api.Client) error {
	out, err := client.Health()
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runInfo(client *api.Client) error {
	info, err := client.ModelInfo()
	if err != nil {
		return err
	}
	return printJSON(info)
}

func runPredict(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "transaction amount")
	customer := fs.String("customer", "", "customer ID")
	txTime := fs.String("time", "", "transaction timestamp (RFC3339)")
	foreign := fs.String("foreign", "", "foreign transaction (yes/no)")
	highRisk := fs.String("highrisk", "", "high risk country (yes/no)")
	prevFraud := fs.String("prevfraud", "", "previous fraud flag (yes/no)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	txn := map[string]any{"transaction_amount": *amount}
	if *customer != "" {
		txn["customer_id"] = *customer
	}
	if *txTime != "" {
		txn["transaction_time"] = *txTime
	}
	if *foreign != "" {
		txn["is_foreign_transaction"] = *foreign
	}
	if *highRisk != "" {
		txn["is_high_risk_country"] = *highRisk
	}
	if *prevFraud != "" {
		txn["previous_fraud_flag"] = *prevFraud
	}

	resp, err := client.Predict(txn)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runBatch(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with an array of transactions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("batch requires -file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}

	var transactions []map[string]any
	if err := json.Unmarshal(data, &transactions); err != nil {
		return fmt.Errorf("parse batch file: %w", err)
	}

	resp, err := client.PredictBatch(transactions)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
