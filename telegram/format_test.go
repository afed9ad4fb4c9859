package telegram

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ayoubcharbel/telegram-bot/model"
)

func TestFormatLeaderboard(t *testing.T) {
	entries := []model.LeaderboardEntry{
		{Rank: 1, UserID: 1, Username: "alice", MessageCount: 14, StickerCount: 1, TotalActivity: 15},
		{Rank: 2, UserID: 2, FirstName: "Bob", MessageCount: 11, TotalActivity: 11},
		{Rank: 3, UserID: 3, TotalActivity: 7, MessageCount: 7},
		{Rank: 4, UserID: 4, Username: "dan", TotalActivity: 2, MessageCount: 2},
	}

	out := FormatLeaderboard(entries)

	for _, want := range []string{"🥇", "🥈", "🥉", "🔸", "@alice", "Bob", "anonymous", "1. @alice", "4. @dan"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatLeaderboard() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatLeaderboardEmpty(t *testing.T) {
	out := FormatLeaderboard(nil)
	if !strings.Contains(out, "No activity yet") {
		t.Errorf("FormatLeaderboard(nil) = %q", out)
	}
}

func TestFormatUserStats(t *testing.T) {
	r := &model.ActivityRecord{
		UserID:        1,
		Username:      "alice",
		MessageCount:  10,
		StickerCount:  5,
		TotalActivity: 15,
		FirstSeen:     time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	}

	out := FormatUserStats(r, 3)

	for _, want := range []string{"@alice", "Messages: 10", "Stickers: 5", "Total: 15", "#3", "10 Feb 2024"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatUserStats() missing %q in:\n%s", want, out)
		}
	}

	unranked := FormatUserStats(r, 0)
	if strings.Contains(unranked, "Rank") {
		t.Error("unranked user should not show a rank line")
	}
}

func TestEventFromMessage(t *testing.T) {
	msg := &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 42, UserName: "alice", FirstName: "Alice"},
		Chat:    &tgbotapi.Chat{ID: -100, Type: "supergroup"},
		Sticker: &tgbotapi.Sticker{FileID: "abc"},
		Text:    "caption",
	}

	e := eventFromMessage(msg)

	if e.UserID != 42 || e.ChatID != -100 {
		t.Errorf("ids = (%d, %d), want (42, -100)", e.UserID, e.ChatID)
	}
	if !e.HasSticker || !e.HasText {
		t.Errorf("payload flags = %+v", e)
	}
	if got := model.Classify(e); got != model.EventSticker {
		t.Errorf("Classify() = %v, want sticker (sticker beats text)", got)
	}
	if e.Private {
		t.Error("supergroup chat flagged private")
	}
}
