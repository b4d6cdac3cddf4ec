package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thread-digest/internal/redisclient"
	"thread-digest/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var recentLimit int

// redisCmd groups Redis-related subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

func connectRedis() (*redis.Client, error) {
	rdb := redisclient.New(GetConfig().Redis)
	if rdb == nil {
		return nil, errors.New("redis is disabled (set redis.enabled: true)")
	}
	return rdb, nil
}

// pingCmd pings the configured Redis server.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and print PONG",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	},
}

// recentCmd lists recently generated posts, newest first.
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently generated posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		posts, err := storage.NewRedisStore(rdb).RecentPosts(ctx, recentLimit)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No posts stored.")
			return nil
		}
		for _, p := range posts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s/%s  %s  (%s)\n",
				p.GeneratedAt.Local().Format("2006-01-02 15:04"), p.Source, p.ID, p.Title, p.Model)
		}
		return nil
	},
}

func init() {
	recentCmd.Flags().IntVar(&recentLimit, "limit", 10, "number of posts to list")
	redisCmd.AddCommand(pingCmd, recentCmd)
	rootCmd.AddCommand(redisCmd)
}
