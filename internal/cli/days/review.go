package days

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

type ReviewSetCmd struct {
	Week      int    `arg:"" help:"Review week (1-12)."`
	Wins      string `short:"w" help:"This week's wins."`
	Obstacles string `short:"o" help:"Obstacles faced."`
	Lessons   string `short:"l" help:"Lessons learned."`
	NextSteps string `short:"n" help:"Next week's focus."`
}

func (c *ReviewSetCmd) Validate() error {
	return models.WeeklyReview{WeekNumber: c.Week}.Validate()
}

func (c *ReviewSetCmd) Run(ctx *cli.Context) error {
	review := models.WeeklyReview{WeekNumber: c.Week}
	if existing, err := ctx.Store.GetWeeklyReview(c.Week); err == nil {
		review = existing
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load review: %w", err)
	}

	if c.Wins == "" && c.Obstacles == "" && c.Lessons == "" && c.NextSteps == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Wins").Value(&review.Wins),
			huh.NewText().Title("Obstacles").Value(&review.Obstacles),
			huh.NewText().Title("Lessons").Value(&review.Lessons),
			huh.NewText().Title("Next steps").Value(&review.NextSteps),
		).Title(fmt.Sprintf("Week %d review", c.Week)))
		if err := form.Run(); err != nil {
			return err
		}
	} else {
		for _, f := range []struct {
			dst *string
			val string
		}{
			{&review.Wins, c.Wins},
			{&review.Obstacles, c.Obstacles},
			{&review.Lessons, c.Lessons},
			{&review.NextSteps, c.NextSteps},
		} {
			if f.val != "" {
				*f.dst = f.val
			}
		}
	}

	if _, err := ctx.Store.SaveWeeklyReview(review); err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	fmt.Printf("✓ Saved review for week %d\n", c.Week)
	return nil
}

type ReviewListCmd struct{}

func (c *ReviewListCmd) Run(ctx *cli.Context) error {
	reviews, err := ctx.Store.GetReviewsByWeek()
	if err != nil {
		return fmt.Errorf("failed to get reviews: %w", err)
	}
	if len(reviews) == 0 {
		fmt.Println("No weekly reviews yet. Add one with 'leverage review set WEEK'.")
		return nil
	}

	fmt.Printf("%-6s %-30s %-30s\n", "Week", "Wins", "Next steps")
	for week := 1; week <= models.MaxReviewWeek; week++ {
		r := reviews.Get(week)
		if r == nil {
			continue
		}
		fmt.Printf("%-6d %-30s %-30s\n", week, truncate(r.Wins, 28), truncate(r.NextSteps, 28))
	}
	return nil
}
