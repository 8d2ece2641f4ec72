package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/data/source"
	"github.com/timegrain/timegrain/internal/util"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List the event store's buckets and how they resolve to roles",
	RunE:  runBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	fileCfg, err := setup(cmd)
	if err != nil {
		return err
	}

	client := source.NewHTTPClient(fileCfg.Server, 15*time.Second)
	buckets, err := client.ListBuckets(context.Background())
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}

	roles := roleByBucket(buckets, fileCfg.Engine)

	fmt.Printf("%-40s %-20s %-10s %s\n", "ID", "TYPE", "KIND", "ROLE")
	for _, b := range buckets {
		role := roles[b.ID]
		if role == "" {
			role = "-"
		}
		kind := string(b.Kind())
		if kind == "" {
			kind = "-"
		}
		fmt.Printf("%-40s %-20s %-10s %s\n", b.ID, b.Type, kind, role)
	}
	return nil
}

// roleByBucket maps bucket IDs to the engine role they resolved to. A
// resolution failure is reported instead of aborting; listing buckets is how
// a user debugs exactly that situation.
func roleByBucket(buckets []source.BucketInfo, cfg config.Config) map[string]string {
	roles := make(map[string]string)
	resolved, err := source.Resolve(buckets, cfg)
	if err != nil {
		util.LogWarn(fmt.Sprintf("Bucket resolution incomplete: %v", err))
		return roles
	}
	roles[resolved.Window] = "window"
	roles[resolved.AFK] = "afk"
	for browser, id := range resolved.Web {
		roles[id] = "web:" + browser
	}
	return roles
}
