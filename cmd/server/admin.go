package main

import (
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func repairCmd() *cobra.Command {
	var userHex, workoutHex string
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Reconcile a workout's status with its exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := primitive.ObjectIDFromHex(userHex)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			workoutID, err := primitive.ObjectIDFromHex(workoutHex)
			if err != nil {
				return fmt.Errorf("invalid --workout: %w", err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			changed, err := a.workout.RepairSession(cmd.Context(), userID, workoutID)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "workout %s repaired\n", workoutHex)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "workout %s already consistent\n", workoutHex)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "owner user id")
	cmd.Flags().StringVar(&workoutHex, "workout", "", "workout id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("workout")
	return cmd
}

func ensureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, db, err := connect(cfg)
			if err != nil {
				return err
			}
			defer mongo.DisconnectDB(client)

			ctx, cancel := context.WithTimeout(cmd.Context(), indexTimeout)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
			return nil
		},
	}
}
