package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"wewearapi/laundry"
	"wewearapi/models"
	"wewearapi/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// usersFor resolves --user, or every account when it is zero.
func usersFor(db *gorm.DB, userID uint) ([]models.UserAccount, error) {
	var users []models.UserAccount
	q := db.Order("id")
	if userID != 0 {
		q = q.Where("id = ?", userID)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	if userID != 0 && len(users) == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, services.ErrNotFound)
	}
	return users, nil
}

func urgencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urgency",
		Short: "Wash urgency maintenance",
	}
	var userID uint
	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute stored wash urgency from wear counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			users, err := usersFor(db, userID)
			if err != nil {
				return err
			}
			repo := services.NewWardrobeRepository(db)
			base := laundry.DefaultThresholds()
			total := 0
			for _, user := range users {
				_, changed, err := repo.RefreshUrgency(cmd.Context(), user.ID, laundry.ForUser(base, user))
				if err != nil {
					return fmt.Errorf("user %d: %w", user.ID, err)
				}
				total += changed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d item(s) updated across %d user(s)\n", total, len(users))
			return nil
		},
	}
	recompute.Flags().UintVar(&userID, "user", 0, "only this user id")
	cmd.AddCommand(recompute)
	return cmd
}

func laundryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "laundry",
		Short: "Laundry reports",
	}
	var userID uint
	var overdueDays int
	report := &cobra.Command{
		Use:   "report",
		Short: "Print the wardrobe health and wash loads of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			users, err := usersFor(db, userID)
			if err != nil {
				return err
			}
			user := users[0]
			repo := services.NewWardrobeRepository(db)
			items, _, err := repo.RefreshUrgency(cmd.Context(), user.ID, laundry.ForUser(laundry.DefaultThresholds(), user))
			if err != nil {
				return err
			}
			needWash, err := repo.ListItemsNeedingWash(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			overdue := time.Duration(overdueDays) * 24 * time.Hour
			return writeReport(cmd.OutOrStdout(), user, laundry.ComputeHealthScore(items, time.Now(), overdue), laundry.SuggestWashLoads(needWash))
		},
	}
	report.Flags().UintVar(&userID, "user", 0, "user id")
	report.Flags().IntVar(&overdueDays, "overdue-days", 30, "days without wear before an item counts as overdue")
	cmd.AddCommand(report)
	return cmd
}

func writeReport(out io.Writer, user models.UserAccount, health laundry.HealthScore, loads []laundry.WashLoad) error {
	fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(out, "health %.1f: %s\n", health.Score, health.Message)
	fmt.Fprintf(out, "items %d, clean %d, needs washing %d, overdue %d\n\n",
		health.TotalItems, health.CleanItems, health.NeedsWashing, health.OverdueItems)
	if len(loads) == 0 {
		fmt.Fprintln(out, "nothing to wash")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOAD\tTEMP\tPRIORITY\tITEMS")
	for _, load := range loads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", load.Name, load.Temperature, load.Priority, load.Count)
	}
	return w.Flush()
}
