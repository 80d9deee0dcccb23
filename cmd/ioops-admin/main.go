// Command ioops-admin is the operator CLI for the verification backend: it
// lists the review queue, mints verification links (optionally as terminal QR
// codes), reveals security codes, and resets failed code attempts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"

	"github.com/meridian-ops/ioops-portal/internal/backend"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	backendURL := flag.String("backend-url", os.Getenv("BACKEND_URL"), "verification backend base URL (overrides $BACKEND_URL)")
	generate := flag.String("generate", "", "generate a verification link for the given tracking ID")
	qr := flag.Bool("qr", false, "render the generated verification link as a terminal QR code")
	qrOutput := flag.String("qr-output", "", "write the QR code to a file instead of stdout")
	code := flag.String("code", "", "reveal the security code for the given tracking ID")
	reset := flag.String("reset", "", "reset failed code attempts for the given tracking ID")
	shipments := flag.Bool("shipments", false, "list shipments instead of verifications")
	flag.Parse()

	if *backendURL == "" {
		fmt.Fprintln(os.Stderr, "a backend URL is required (-backend-url or $BACKEND_URL)")
		os.Exit(2)
	}

	client, err := backend.NewClient(backend.WithBaseURL(*backendURL))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create backend client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *generate != "":
		err = generateLink(ctx, client, *generate, *qr, *qrOutput)
	case *code != "":
		err = revealCode(ctx, client, *code)
	case *reset != "":
		err = resetAttempts(ctx, client, *reset)
	case *shipments:
		err = listShipments(ctx, client)
	default:
		err = listVerifications(ctx, client)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func listVerifications(ctx context.Context, client *backend.Client) error {
	verifications, err := client.ListVerifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to list verifications: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOKEN\tNAME\tSTATUS\tDOCS APPROVED")
	for _, v := range verifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", v.ID, v.Token, v.Name, v.Status, v.DocumentsApproved())
	}
	return w.Flush()
}

func listShipments(ctx context.Context, client *backend.Client) error {
	shipments, err := client.ListShipments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shipments: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRACKING\tORIGIN\tDESTINATION\tSTATUS\tRECIPIENT")
	for _, s := range shipments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.TrackingID, s.Origin, s.Destination, s.Status, s.RecipientName)
	}
	return w.Flush()
}

func generateLink(ctx context.Context, client *backend.Client, trackingID string, qr bool, qrOutput string) error {
	resp, err := client.GenerateVerification(ctx, trackingID)
	if err != nil {
		return fmt.Errorf("failed to generate verification for %s: %w", trackingID, err)
	}
	fmt.Printf("token: %s\nlink:  %s\n", resp.Token, resp.VerificationLink)

	if !qr {
		return nil
	}
	out := os.Stdout
	if qrOutput != "" {
		f, err := os.Create(qrOutput)
		if err != nil {
			return fmt.Errorf("failed to create QR output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	qrterminal.GenerateHalfBlock(resp.VerificationLink, qrterminal.L, out)
	return nil
}

func revealCode(ctx context.Context, client *backend.Client, trackingID string) error {
	resp, err := client.SecurityCode(ctx, trackingID)
	if err != nil {
		return fmt.Errorf("failed to fetch security code for %s: %w", trackingID, err)
	}
	fmt.Printf("security code: %s\n", resp.SecurityCode)
	if resp.UsedAt != "" {
		fmt.Printf("used at:       %s\n", resp.UsedAt)
	}
	return nil
}

func resetAttempts(ctx context.Context, client *backend.Client, trackingID string) error {
	if err := client.ResetAttempts(ctx, trackingID); err != nil {
		return fmt.Errorf("failed to reset attempts for %s: %w", trackingID, err)
	}
	fmt.Println("failed attempts reset")
	return nil
}
