package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/card-services/configs"
	"github.com/avvvet/card-services/internal/cardsvc/models"
	svcconfig "github.com/avvvet/card-services/internal/cardsvc/config"
	"github.com/avvvet/card-services/internal/cardsvc/service"
	"github.com/avvvet/card-services/internal/cardsvc/store"
)

const SERVICE_NAME = "cardctl"

func main() {
	newCard := flag.Bool("new", false, "generate a new card")
	list := flag.Bool("list", false, "list all cards")
	disable := flag.String("disable", "", "disable the given card")
	enable := flag.String("enable", "", "enable the given card")
	flag.Parse()

	config.Logging(SERVICE_NAME)
	config.LoadEnv(SERVICE_NAME)

	ledger, closeLedger, err := store.Open(svcconfig.Load())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer closeLedger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cardService := service.NewCardService(ledger)
	if err := run(ctx, cardService, os.Stdout, *newCard, *list, *disable, *enable); err != nil {
		log.Errorf("cardctl: %s", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *service.CardService, out io.Writer, newCard, list bool, disable, enable string) error {
	switch {
	case newCard:
		card, err := s.GenerateCard(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "generated card: %s\n", card.CardSN)
	case disable != "":
		if _, err := s.SetStatus(ctx, disable, models.CardStatusDisabled); err != nil {
			return fmt.Errorf("disable %s: %w", disable, err)
		}
		fmt.Fprintf(out, "disabled card: %s\n", disable)
	case enable != "":
		if _, err := s.SetStatus(ctx, enable, models.CardStatusActive); err != nil {
			return fmt.Errorf("enable %s: %w", enable, err)
		}
		fmt.Fprintf(out, "enabled card: %s\n", enable)
	case list:
	}

	cards, err := s.ListCards(ctx)
	if err != nil {
		return err
	}
	return printCards(out, cards)
}

func printCards(out io.Writer, cards []*models.Card) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CARD\tSTATUS\tACCOUNTS\tREMAINING\tCREATED")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%s\n",
			c.CardSN, c.Status, len(c.Accounts), c.MaxAccounts, c.Remaining(),
			c.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
