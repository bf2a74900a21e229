package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultpass/ecomkit-go/internal/config"
	"github.com/vaultpass/ecomkit-go/internal/crypto"
	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/qrcode"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "ecomkit",
		Short:        "Generate passwords and QR codes for e-commerce back offices",
		SilenceUsage: true,
	}

	svc := service.NewGeneratorService(cfg.Password.GenerationConfig(), cfg.BatchWorkers, nil)
	root.AddCommand(
		newGenerateCmd(svc),
		newValidateCmd(svc),
		newQRCodeCmd(service.NewQRCodeService(nil)),
		newTokenCmd(cfg.JWTSecret),
	)
	return root
}

func newGenerateCmd(svc *service.GeneratorService) *cobra.Command {
	var (
		length                               int
		upper, lower, numbers, special, excl bool
		custom, credentialType               string
		count                                int
		asJSON                               bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one or more passwords",
		Long: `Generate passwords. Character flags that are not given keep the
configured defaults. With --type the e-commerce preset of that credential
type is used instead of the character flags.

  # Three 20 character passwords without special characters
  ecomkit generate --length 20 --special=false --count 3

  # An API key
  ecomkit generate --type api_key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if credentialType != "" {
				req := model.EcommerceRequest{Type: credentialType}
				if cmd.Flags().Changed("length") {
					req.CustomLength = &length
				}
				resp, err := svc.GenerateEcommerce(ctx, req)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(out, resp)
				}
				printPassword(out, resp.Password, resp.Strength)
				return nil
			}

			opts := model.PasswordOptions{}
			flags := cmd.Flags()
			if flags.Changed("length") {
				opts.Length = &length
			}
			if flags.Changed("uppercase") {
				opts.IncludeUppercase = &upper
			}
			if flags.Changed("lowercase") {
				opts.IncludeLowercase = &lower
			}
			if flags.Changed("numbers") {
				opts.IncludeNumbers = &numbers
			}
			if flags.Changed("special") {
				opts.IncludeSpecialChars = &special
			}
			if flags.Changed("exclude-similar") {
				opts.ExcludeSimilar = &excl
			}
			if flags.Changed("custom") {
				opts.CustomCharacters = &custom
			}

			resp, err := svc.GenerateBatch(ctx, model.BatchRequest{Count: &count, Options: opts})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, resp)
			}
			for _, p := range resp.Passwords {
				printPassword(out, p.Password, p.Strength)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 12, "Password length (4-128).")
	cmd.Flags().BoolVar(&upper, "uppercase", true, "Include uppercase letters.")
	cmd.Flags().BoolVar(&lower, "lowercase", true, "Include lowercase letters.")
	cmd.Flags().BoolVar(&numbers, "numbers", true, "Include digits.")
	cmd.Flags().BoolVar(&special, "special", true, "Include special characters.")
	cmd.Flags().BoolVar(&excl, "exclude-similar", false, "Drop look-alike characters (il1Lo0O).")
	cmd.Flags().StringVar(&custom, "custom", "", "Use exactly these characters.")
	cmd.Flags().StringVarP(&credentialType, "type", "t", "", "Credential preset: customer, admin, api_key or temporary.")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of passwords (1-100).")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON.")
	return cmd
}

func newValidateCmd(svc *service.GeneratorService) *cobra.Command {
	var (
		minLength int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "validate <password>",
		Short: "Check a password against the security criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.ValidateRequest{Password: args[0]}
			if cmd.Flags().Changed("min-length") {
				req.Criteria.MinLength = &minLength
			}
			resp, err := svc.Validate(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "valid: %v\n", resp.IsValid)
			for _, issue := range resp.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			fmt.Fprintf(out, "strength: %d (%s)\n", resp.Strength.Score, resp.Strength.Level)
			for _, f := range resp.Strength.Feedback {
				fmt.Fprintf(out, "  - %s\n", f)
			}
			fmt.Fprintf(out, "estimated crack time: %s\n", resp.Estimate.CrackTime)
			if !resp.IsValid {
				return errors.New("password does not meet the criteria")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&minLength, "min-length", 8, "Minimum length.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON.")
	return cmd
}

func newQRCodeCmd(svc *service.QRCodeService) *cobra.Command {
	var (
		out                string
		width, margin      int
		dark, light, level string
	)
	cmd := &cobra.Command{
		Use:   "qrcode <text>",
		Short: "Encode text as a QR code",
		Long: `Encode text as a QR code. The output format follows the extension
of --out (.png or .svg). Without --out the PNG data URL is printed.

  ecomkit qrcode https://shop.example.com --out shop.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.QRCodeRequest{
				Text: args[0],
				Options: model.QROptions{
					Width:                &width,
					Margin:               &margin,
					Color:                &model.QRColor{Dark: dark, Light: light},
					ErrorCorrectionLevel: level,
				},
			}
			if out == "" {
				resp, err := svc.Generate(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.QRCode.DataURL)
				return nil
			}
			return writeQRFile(out, req)
		},
	}
	def := qrcode.DefaultOptions()
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.png or .svg).")
	cmd.Flags().IntVar(&width, "width", def.Width, "Image width in pixels (100-1000).")
	cmd.Flags().IntVar(&margin, "margin", def.Margin, "Quiet zone in modules (0-10).")
	cmd.Flags().StringVar(&dark, "dark", def.Dark, "Dark module colour.")
	cmd.Flags().StringVar(&light, "light", def.Light, "Light module colour.")
	cmd.Flags().StringVar(&level, "level", def.ErrorCorrectionLevel, "Error correction level: L, M, Q or H.")
	return cmd
}

func writeQRFile(path string, req model.QRCodeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	sym, err := qrcode.Encode(req.Text, req.Options.Resolve(qrcode.DefaultOptions()))
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if data, err = sym.PNG(); err != nil {
			return err
		}
	case ".svg":
		data = []byte(sym.SVG())
	default:
		return fmt.Errorf("unsupported output format %q, use .png or .svg", filepath.Ext(path))
	}
	return os.WriteFile(path, data, 0o644)
}

func newTokenCmd(secret string) *cobra.Command {
	var (
		scopes []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the batch routes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := crypto.IssueToken(args[0], scopes, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{"batch"}, "Scopes granted by the token.")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime.")
	return cmd
}

func printPassword(w io.Writer, password string, s crypto.StrengthReport) {
	fmt.Fprintf(w, "%s\t%d\t%s\n", password, s.Score, s.Level)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
