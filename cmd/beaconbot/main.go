// Command beaconbot runs one message through the marketplace bot and prints
// the reply. It uses the same configuration and listing store as the server,
// so listings created here show up on the site.
//
// It also drives the one-off WhatsApp number onboarding calls.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"beaconmarket/app"
	"beaconmarket/bot"
	"beaconmarket/config"
	dbpkg "beaconmarket/db"
	"beaconmarket/extractor"
	"beaconmarket/tools"

	"github.com/jinzhu/gorm"
	"github.com/spf13/pflag"
)

const noResponse = "(no response - not a command)"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	sender      string
	name        string
	ai          bool
	interactive bool

	requestCode string
	register    string
	subscribe   bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("beaconbot", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "config.json", "configuration file (JSON or YAML)")
	flagSet.StringVar(&opts.sender, "sender", "27820000000", "sender phone number")
	flagSet.StringVar(&opts.name, "name", "", "sender display name")
	flagSet.BoolVar(&opts.ai, "ai", false, "extract listings with OpenAI (needs OPENAI_API_KEY)")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "read one message per line from stdin")
	flagSet.StringVar(&opts.requestCode, "request-code", "", "request a WhatsApp verification code by SMS or VOICE")
	flagSet.StringVar(&opts.register, "register", "", "register the WhatsApp number with this 6-digit PIN")
	flagSet.BoolVar(&opts.subscribe, "subscribe", false, "subscribe the app to the business account webhooks")
	flagSet.SetOutput(stdout)
	flagSet.Usage = func() {
		fmt.Fprintf(stdout, "Usage:\n  beaconbot [flags] \"MESSAGE\"\n  beaconbot --interactive [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if opts.requestCode != "" || opts.register != "" || opts.subscribe {
		return onboard(ctx, app.WhatsApp(cfg), opts, stdout)
	}

	message := strings.Join(flagSet.Args(), " ")
	if !opts.interactive && strings.TrimSpace(message) == "" {
		flagSet.Usage()
		return fmt.Errorf("missing message")
	}

	var conn *gorm.DB
	if cfg.ListingStore != config.STORE_SUPABASE {
		dbpkg.SetConfigurations(cfg)
		if conn, err = dbpkg.Connect(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer conn.Close()
	}

	// Inference only runs when asked for, so local runs stay offline.
	var infer extractor.InferFunc
	if opts.ai {
		client := tools.NewOpenAIClient(cfg.OpenAI.ApiKey, cfg.OpenAI.Model)
		if !client.Configured() {
			return fmt.Errorf("--ai needs OPENAI_API_KEY")
		}
		infer = client.Complete
	}
	b, _ := app.Bot(cfg, app.ListingStore(cfg, conn), extractor.New(infer))

	answer := func(text string) {
		reply, ok := b.HandleMessage(ctx, bot.Message{
			Text:       text,
			Sender:     opts.sender,
			SenderName: opts.name,
		})
		if !ok {
			reply = noResponse
		}
		fmt.Fprintln(stdout, reply)
	}

	if !opts.interactive {
		answer(message)
		return nil
	}

	fmt.Fprintf(stdout, "BeaconMarket bot, sending as %s. Empty line or \"quit\" exits.\n", opts.sender)
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			break
		}
		answer(line)
	}
	return scanner.Err()
}

func onboard(ctx context.Context, client tools.WhatsAppClient, opts options, stdout io.Writer) error {
	if opts.requestCode != "" {
		if err := client.RequestCode(ctx, opts.requestCode, ""); err != nil {
			return fmt.Errorf("request code: %w", err)
		}
		fmt.Fprintln(stdout, "verification code requested")
	}
	if opts.register != "" {
		if err := client.Register(ctx, opts.register); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintln(stdout, "phone number registered")
	}
	if opts.subscribe {
		if err := client.SubscribeApp(ctx); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		fmt.Fprintln(stdout, "app subscribed to webhooks")
	}
	return nil
}
