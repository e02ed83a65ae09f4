package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/adk"
	"github.com/user/vulnrecord/pkg/config"
	"github.com/user/vulnrecord/pkg/store"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := bufio.NewScanner(os.Stdin)
		prompt := func(label string) string {
			fmt.Print(label)
			scanner.Scan()
			return strings.TrimSpace(scanner.Text())
		}

		fmt.Println("Welcome to the vulnrecord Setup Wizard")
		fmt.Println("--------------------------------------")

		// 1. Provider
		fmt.Println("Step 1: Choose your AI Provider")
		for i, p := range adk.Providers {
			fmt.Printf("%d. %s\n", i+1, p)
		}
		choice := strings.ToLower(prompt("Enter number or name > "))
		var provider string
		for i, p := range adk.Providers {
			if choice == strconv.Itoa(i+1) || choice == p {
				provider = p
			}
		}
		if provider == "" {
			return fmt.Errorf("invalid provider choice: %q", choice)
		}

		// 2. API key
		fmt.Printf("\nStep 2: Enter API Key for %s\n", provider)
		apiKey := prompt("> ")
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}

		// 3. Model
		fmt.Println("\nStep 3: Validating key and fetching available models...")
		ctx := context.Background()
		selectedModel, err := chooseModel(ctx, provider, apiKey, prompt)
		if err != nil {
			return err
		}

		// 4. Store
		fmt.Println("\nStep 4: Where should reports be stored?")
		fmt.Println("1. memory (reports are kept for the lifetime of the process)")
		fmt.Println("2. postgres")
		driver := store.DriverMemory
		var dsn string
		if c := strings.ToLower(prompt("Enter number or name > ")); c == "2" || c == store.DriverPostgres {
			driver = store.DriverPostgres
			dsn = prompt("Postgres DSN > ")
			if dsn == "" {
				return fmt.Errorf("a DSN is required for the postgres store")
			}
		}

		// 5. Save
		fmt.Println("\nStep 5: Saving Configuration...")
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.SelectedProvider = provider
		cfg.SelectedModel = selectedModel
		cfg.SetAPIKey(provider, apiKey)
		cfg.Store.Driver = driver
		cfg.Store.DSN = dsn
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Println("--------------------------------------")
		fmt.Println("Setup Complete!")
		fmt.Printf("Provider: %s\n", provider)
		fmt.Printf("Model:    %s\n", selectedModel)
		fmt.Printf("Store:    %s\n", driver)
		fmt.Println("You can now run 'vulnrecord analyze <scan-log>'")
		return nil
	},
}

func chooseModel(ctx context.Context, provider, apiKey string, prompt func(string) string) (string, error) {
	p, err := adk.NewProvider(ctx, provider, apiKey, "")
	if err != nil {
		return "", fmt.Errorf("failed to initialize provider: %w", err)
	}
	if closer, ok := p.(interface{ Close() }); ok {
		defer closer.Close()
	}

	models, err := p.ListModels(ctx)
	if err != nil || len(models) == 0 {
		fmt.Printf("Warning: Could not fetch models from API: %v\n", err)
		fmt.Println("Please enter model name manually (e.g., 'gemini-pro'):")
		return prompt("> "), nil
	}

	fmt.Printf("Successfully retrieved %d models.\n", len(models))
	for i, m := range models {
		fmt.Printf("%d. %s\n", i+1, m)
	}
	idx, err := strconv.Atoi(prompt("Select Model (number) > "))
	if err != nil || idx < 1 || idx > len(models) {
		fmt.Println("Invalid selection. Using first available model.")
		return models[0], nil
	}
	return models[idx-1], nil
}

func init() {
	configCmd.AddCommand(setupCmd)
}
