package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finassist/internal/core"
)

type (
	createdUser struct {
		UserID int64 `json:"user_id"`
	}

	storedBudget struct {
		UserID       int64   `json:"user_id"`
		Period       string  `json:"month"`
		Salary       float64 `json:"salary"`
		ExpenseLimit float64 `json:"expense_limit"`
		SavingsGoal  float64 `json:"savings_goal"`
	}
)

// NewUsersCommand creates the users administration group.
func NewUsersCommand(newApp AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var u core.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			u.CreatedAt = app.now().UTC()
			id, err := app.Backend.Seeder.CreateUser(cmd.Context(), u)
			if err != nil {
				return nil, core.Fail(core.ErrStorage, "The user could not be saved.", err)
			}
			return createdUser{UserID: id}, nil
		}),
	}
	add.Flags().Int64Var(&u.ID, "id", 0, "user id (default: next free id)")
	add.Flags().StringVar(&u.FirstName, "first", "", "first name")
	add.Flags().StringVar(&u.LastName, "last", "", "last name")
	add.Flags().IntVar(&u.Age, "age", 0, "age")
	add.Flags().StringVar(&u.Gender, "gender", "", "gender")
	add.Flags().StringVar(&u.Occupation, "occupation", "", "occupation")
	add.Flags().StringVar(&u.Email, "email", "", "email address")
	_ = add.MarkFlagRequired("first")
	_ = add.MarkFlagRequired("last")

	cmd.AddCommand(add)
	return cmd
}

// NewBudgetsCommand creates the budgets administration group.
func NewBudgetsCommand(newApp AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets",
	}

	var period, salary, limit, goal string
	set := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Create or replace a user's budget for one period",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return nil, err
			}
			b := core.Budget{UserID: id, Period: period}
			for _, f := range []struct {
				flag string
				raw  string
				dst  *core.Money
			}{
				{"salary", salary, &b.Salary},
				{"limit", limit, &b.ExpenseLimit},
				{"goal", goal, &b.SavingsGoal},
			} {
				if *f.dst, err = core.ParseMoney(f.raw); err != nil {
					return nil, core.Fail(core.ErrParse, fmt.Sprintf("Invalid amount %q for --%s.", f.raw, f.flag), err)
				}
			}
			if err := app.Backend.Seeder.SetBudget(cmd.Context(), b); err != nil {
				return nil, core.Fail(core.ErrStorage, "The budget could not be saved.", err)
			}
			return storedBudget{
				UserID:       b.UserID,
				Period:       b.Period,
				Salary:       b.Salary.Float(),
				ExpenseLimit: b.ExpenseLimit.Float(),
				SavingsGoal:  b.SavingsGoal.Float(),
			}, nil
		}),
	}
	set.Flags().StringVar(&period, "period", "", "budget period label, e.g. May")
	set.Flags().StringVar(&salary, "salary", "0", "monthly salary")
	set.Flags().StringVar(&limit, "limit", "0", "expense limit")
	set.Flags().StringVar(&goal, "goal", "0", "savings goal")
	_ = set.MarkFlagRequired("period")

	cmd.AddCommand(set)
	return cmd
}
