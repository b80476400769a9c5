package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tournevent/upslink/internal/config"
	"github.com/tournevent/upslink/internal/telemetry"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups"
	"github.com/tournevent/upslink/pkg/shipper/ups/builder"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// connectionFlags override the UPS settings read from the environment.
type connectionFlags struct {
	fs *pflag.FlagSet

	accountNumber string
	clientID      string
	clientSecret  string
	licenseNumber string
	userID        string
	password      string
	baseURL       string
	generation    string
	testMode      bool
	useMock       bool
	timeout       time.Duration
}

var connection = &connectionFlags{}

func (f *connectionFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ups", pflag.ContinueOnError)
	fs.StringVar(&f.accountNumber, "account-number", "", "UPS shipper account number")
	fs.StringVar(&f.clientID, "client-id", "", "OAuth client id")
	fs.StringVar(&f.clientSecret, "client-secret", "", "OAuth client secret")
	fs.StringVar(&f.licenseNumber, "license-number", "", "legacy access license number")
	fs.StringVar(&f.userID, "user-id", "", "legacy user id")
	fs.StringVar(&f.password, "password", "", "legacy password")
	fs.StringVar(&f.baseURL, "base-url", "", "override the UPS endpoint root")
	fs.StringVarP(&f.generation, "api", "a", "json", "API generation: json or xml")
	fs.BoolVarP(&f.testMode, "test", "t", false, "use the UPS customer integration environment")
	fs.BoolVar(&f.useMock, "mock", false, "answer from canned responses instead of calling UPS")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "HTTP timeout")
	f.fs = fs
	return fs
}

// apply copies the flags set on the command line onto cfg.
func (f *connectionFlags) apply(cfg *config.Config) error {
	if f.fs == nil {
		return nil
	}
	overrides := map[string]func(){
		"account-number": func() { cfg.UPSAccountNumber = f.accountNumber },
		"client-id":      func() { cfg.UPSClientID = f.clientID },
		"client-secret":  func() { cfg.UPSClientSecret = f.clientSecret },
		"license-number": func() { cfg.UPSLicenseNumber = f.licenseNumber },
		"user-id":        func() { cfg.UPSUserID = f.userID },
		"password":       func() { cfg.UPSPassword = f.password },
		"base-url":       func() { cfg.UPSBaseURL = f.baseURL },
		"api":            func() { cfg.UPSAPIGeneration = f.generation },
		"test":           func() { cfg.UPSTestMode = f.testMode },
		"mock":           func() { cfg.UPSUseMock = f.useMock },
		"timeout":        func() { cfg.UPSTimeout = f.timeout },
	}
	// cobra parses into its own flag set, so only Changed is reliable here.
	f.fs.VisitAll(func(flag *pflag.Flag) {
		if set, ok := overrides[flag.Name]; ok && flag.Changed {
			set()
		}
	})
	if _, err := cfg.Generation(); err != nil {
		return fmt.Errorf("invalid --api: %w", err)
	}
	return nil
}

var (
	requestFile string
	outputDir   string
	labelFormat string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Shop UPS rates for a shipment described in a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCarrier(cmd, func(ctx context.Context, carrier *ups.Carrier) error {
			var req shipper.QuoteRequest
			if err := readRequest(requestFile, &req); err != nil {
				return err
			}
			resp, err := carrier.GetQuote(ctx, &req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		})
	},
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Create a UPS shipment described in a JSON file and save its labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCarrier(cmd, func(ctx context.Context, carrier *ups.Carrier) error {
			var req shipper.CreateOrderRequest
			if err := readRequest(requestFile, &req); err != nil {
				return err
			}
			resp, err := carrier.CreateOrder(ctx, &req)
			if err != nil {
				return err
			}
			if outputDir != "" {
				for _, label := range resp.Labels {
					path, err := saveLabel(outputDir, label)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "label saved to", path)
				}
			}
			return printJSON(cmd, resp)
		})
	},
}

var labelCmd = &cobra.Command{
	Use:   "label <tracking-number>",
	Short: "Recover the label of a shipped package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *ups.Client) error {
			result, err := client.RecoverLabelWith(ctx, func(b *builder.LabelRecoveryBuilder) error {
				b.AddLabelSpecification(labelFormat)
				b.AddTrackingNumber(args[0])
				return nil
			})
			if err != nil {
				return err
			}
			if !result.Success() {
				return fmt.Errorf("label recovery failed: %s", result.ErrorDescription())
			}
			path, err := result.LabelImage().SaveTemp(outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

var trackCmd = &cobra.Command{
	Use:   "track <tracking-number>...",
	Short: "Show the latest status of one or more packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *ups.Client) error {
			results, err := client.TrackMany(ctx, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, results)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{quoteCmd, shipCmd} {
		cmd.Flags().StringVarP(&requestFile, "request", "r", "-", "JSON request file, - for stdin")
	}
	shipCmd.Flags().StringVarP(&outputDir, "out", "o", "", "directory to save labels in")
	labelCmd.Flags().StringVarP(&outputDir, "out", "o", "", "directory to save the label in (temp dir when empty)")
	labelCmd.Flags().StringVarP(&labelFormat, "format", "f", "gif", "label image format")
}

func withClient(cmd *cobra.Command, run func(context.Context, *ups.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := cliLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	return run(cmd.Context(), initUPSClient(cfg, logger))
}

func withCarrier(cmd *cobra.Command, run func(context.Context, *ups.Carrier) error) error {
	return withClient(cmd, func(ctx context.Context, client *ups.Client) error {
		return run(ctx, ups.NewCarrier(client))
	})
}

// cliLogger keeps stdout free for command output.
func cliLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, "stderr")
}

func readRequest(path string, dst any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = readAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

func readAll(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err == nil && info.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("no request given: use --request or pipe JSON on stdin")
	}
	return io.ReadAll(f)
}

func saveLabel(dir string, label shipper.Label) (string, error) {
	data, err := base64.StdEncoding.DecodeString(label.Data)
	if err != nil {
		return "", fmt.Errorf("decoding label: %w", err)
	}
	path := filepath.Join(dir, label.TrackingNumber+"."+string(label.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing label: %w", err)
	}
	return path, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
