package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ayoubcharbel/telegram-bot/model"
)

// FormatLeaderboard renders the ranked list as a Markdown message with
// medals for the top three.
func FormatLeaderboard(entries []model.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 *Leaderboard*\n\nNo activity yet. Say something!"
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Leaderboard*\n\n")

	for _, e := range entries {
		medal := "🔸"
		switch e.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		name := e.Username
		if name != "" {
			name = "@" + name
		} else if e.FirstName != "" {
			name = e.FirstName
		} else {
			name = "anonymous"
		}

		sb.WriteString(fmt.Sprintf("%s %d. %s — %d (%d msg, %d stickers)\n",
			medal, e.Rank, name, e.TotalActivity, e.MessageCount, e.StickerCount))
	}

	return sb.String()
}

// FormatUserStats renders one user's counters. rank of 0 means unranked.
func FormatUserStats(r *model.ActivityRecord, rank int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *Stats for %s*\n\n", r.DisplayName()))
	sb.WriteString(fmt.Sprintf("✉️ Messages: %d\n", r.MessageCount))
	sb.WriteString(fmt.Sprintf("🎭 Stickers: %d\n", r.StickerCount))
	sb.WriteString(fmt.Sprintf("Σ Total: %d\n", r.TotalActivity))
	if rank > 0 {
		sb.WriteString(fmt.Sprintf("🏅 Rank: #%d\n", rank))
	}
	sb.WriteString(fmt.Sprintf("👀 First seen: %s\n", r.FirstSeen.Format("02 Jan 2006")))
	return sb.String()
}

// FormatAnalytics renders the aggregate counters for the /stats command.
func FormatAnalytics(snap model.AnalyticsSnapshot) string {
	var sb strings.Builder
	sb.WriteString("📈 Chat analytics\n\n")
	sb.WriteString(fmt.Sprintf("Total interactions: %d\n", snap.TotalInteractions))
	sb.WriteString(fmt.Sprintf("Unique users: %d\n", snap.UniqueUsers))

	if len(snap.ByEventType) > 0 {
		sb.WriteString("\nBy type:\n")
		types := make([]string, 0, len(snap.ByEventType))
		for k := range snap.ByEventType {
			types = append(types, k)
		}
		sort.Strings(types)
		for _, k := range types {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", k, snap.ByEventType[k]))
		}
	}

	if len(snap.ByCommand) > 0 {
		sb.WriteString("\nCommands:\n")
		cmds := make([]string, 0, len(snap.ByCommand))
		for k := range snap.ByCommand {
			cmds = append(cmds, k)
		}
		sort.Strings(cmds)
		for _, k := range cmds {
			sb.WriteString(fmt.Sprintf("  /%s: %d\n", k, snap.ByCommand[k]))
		}
	}

	return sb.String()
}
