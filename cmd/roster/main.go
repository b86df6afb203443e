package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/database"
	"github.com/akadimia/academy-backend/internal/logger"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// roster prints the staff roster as a table, highest ranks first.
func main() {
	var rankFilter string
	flag.StringVar(&rankFilter, "rank", "", "Only show users holding this rank")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "console")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	var filter *model.Rank
	if rankFilter != "" {
		r := model.Rank(rankFilter)
		if !r.Valid() {
			log.Fatal().Str("rank", rankFilter).Msg("Unknown rank")
		}
		filter = &r
	}

	users, err := userRepo.List(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list users")
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Rank.Level() > users[j].Rank.Level()
	})

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s (%d members)\n\n", bold("Academy Staff Roster"), len(users))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Full Name", "Rank", "Joined"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, u := range users {
		table.Append([]string{
			fmt.Sprintf("%d", u.ID),
			u.Username,
			u.FullName,
			colorRank(u.Rank),
			u.CreatedAt.Format("2006-01-02"),
		})
	}
	table.Render()
}

func colorRank(r model.Rank) string {
	switch {
	case r == model.RankDev:
		return color.MagentaString(r.Label())
	case r.Level() >= model.RankDeputyChief.Level():
		return color.RedString(r.Label())
	case r.HasDashboardAccess():
		return color.YellowString(r.Label())
	case r == model.RankTrainer:
		return color.CyanString(r.Label())
	default:
		return color.GreenString(r.Label())
	}
}
