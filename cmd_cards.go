package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/turbekoff/staminabot/pkg/calc"
	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

var (
	ErrAmbiguousCard = errors.New("card name is ambiguous")
	ErrChooseCard    = errors.New("choose a card with --card")
)

var pressCard string

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage stamina cards",
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		return printCards(cmd.OutOrStdout(), store.Cards())
	}),
}

var cardsAddCmd = &cobra.Command{
	Use:   "add <name...> [max]",
	Short: "Add a card",
	Long: `Adds a card. The last argument is the maximum when it is a number;
a missing or invalid maximum defaults to 10000.`,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		name, rawMax := splitNameMax(strings.Join(args, " "))
		c := store.Add(ctx, name, rawMax)
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", c.Name, c.ID)
		return nil
	}),
}

var cardsEditCmd = &cobra.Command{
	Use:   "edit <card> [name...] [max]",
	Short: "Rename a card or change its maximum",
	Long: `Edits the card given by id or name. Omitted values are kept. The
current value is pulled down when it exceeds the new maximum.`,
	Args: cobra.MinimumNArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		c, err := resolveCard(store, args[0])
		if err != nil {
			return err
		}
		name, rawMax := splitNameMax(strings.Join(args[1:], " "))
		if name == "" {
			name = c.Name
		}
		if rawMax == "" {
			rawMax = calc.Format(c.Max)
		}
		c, err = store.Edit(ctx, c.ID, name, rawMax)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s / %s\n", c.Name, calc.Format(c.Current), calc.Format(c.Max))
		return nil
	}),
}

var cardsDeleteCmd = &cobra.Command{
	Use:   "delete <card>...",
	Short: "Delete cards by id or name",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		ids := make([]string, 0, len(args))
		for _, ref := range args {
			c, err := resolveCard(store, ref)
			if err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		if err := store.DeleteMany(ctx, ids); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d card(s)\n", len(ids))
		return nil
	}),
}

var cardsPresetCmd = &cobra.Command{
	Use:   "preset [max...]",
	Short: "Add one card per body part",
	Long: `Adds head, torso, arms and legs. One maximum applies to every part;
several are taken in that order.`,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		added := store.AddPreset(ctx, presetMaxes(strings.Join(args, " ")))
		return printCards(cmd.OutOrStdout(), added)
	}),
}

var pressCmd = &cobra.Command{
	Use:   "press <button>...",
	Short: "Press keypad buttons on a card",
	Long: `Selects a card and presses the given buttons in order, then prints
the card and the calculator display. Only equals saves a value.

Buttons: 0-9 00 . + - * / × ÷ ( ) clear undo percent equals (AC % =).

Example:
  stamina press --card Head - 3 0 =`,
	Args: cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error {
		c, err := resolveCard(store, pressCard)
		if err != nil {
			return err
		}

		s := session.New(store, logger)
		if err := s.Select(c.ID); err != nil {
			return err
		}
		for _, arg := range args {
			b, err := session.ParseButton(arg)
			if err != nil {
				return err
			}
			if err := s.Press(ctx, b); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), s.Status())
		fmt.Fprintln(cmd.OutOrStdout(), s.Display())
		return nil
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{cardsCmd, pressCmd} {
		cmd.PersistentFlags().StringVar(&storageKey, "key", card.StorageKey, "Storage key of the card list")
	}
	pressCmd.Flags().StringVar(&pressCard, "card", "", "Card id or name (optional with a single card)")

	cardsCmd.AddCommand(cardsListCmd)
	cardsCmd.AddCommand(cardsAddCmd)
	cardsCmd.AddCommand(cardsEditCmd)
	cardsCmd.AddCommand(cardsDeleteCmd)
	cardsCmd.AddCommand(cardsPresetCmd)
}

type storeFunc func(ctx context.Context, cmd *cobra.Command, store *card.Store, args []string) error

// withStore opens the configured backend and loads the card list before
// running fn.
func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStorage(ctx, config.Storage)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer st.close()

		store := card.NewStore(st.kv, storageKey, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, cmd, store, args)
	}
}

// resolveCard finds a card by id, then by case-insensitive name. An empty
// ref picks the only card.
func resolveCard(store *card.Store, ref string) (card.Card, error) {
	if ref == "" {
		if store.Len() == 1 {
			return store.Cards()[0], nil
		}
		return card.Card{}, ErrChooseCard
	}
	if c, ok := store.Get(ref); ok {
		return c, nil
	}

	var (
		found card.Card
		n     int
	)
	for _, c := range store.Cards() {
		if strings.EqualFold(c.Name, ref) {
			found = c
			n++
		}
	}
	switch n {
	case 0:
		return card.Card{}, fmt.Errorf("%s: %w", ref, card.ErrCardNotFound)
	case 1:
		return found, nil
	}
	return card.Card{}, fmt.Errorf("%s matches %d cards: %w", ref, n, ErrAmbiguousCard)
}

func printCards(w io.Writer, cards []card.Card) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "no cards")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CURRENT", "MAX", "%")
	for _, c := range cards {
		t.Row(c.ID, c.Name, calc.Format(c.Current), calc.Format(c.Max), strconv.Itoa(c.Percent()))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
