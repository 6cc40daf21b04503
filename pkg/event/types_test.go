package event

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestParseType はParseType関数を検証する。
func TestParseType(t *testing.T) {
	t.Parallel()

	t.Run("全ての通知種別をパースできること", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			input string
			want  Type
		}{
			{"tournament_start", TypeTournamentStart},
			{"round_start", TypeRoundStart},
			{"match_result", TypeMatchResult},
			{"announcement", TypeAnnouncement},
		}

		for _, tt := range tests {
			got, err := ParseType(tt.input)
			if err != nil {
				t.Errorf("ParseType(%q)でエラーが発生: %v", tt.input, err)
				continue
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		}
	})

	t.Run("大文字小文字を区別しないこと", func(t *testing.T) {
		t.Parallel()

		got, err := ParseType("TOURNAMENT_START")
		if err != nil {
			t.Fatalf("ParseType()でエラーが発生: %v", err)
		}
		if got != TypeTournamentStart {
			t.Errorf("ParseType(%q) = %q, want %q", "TOURNAMENT_START", got, TypeTournamentStart)
		}
	})

	t.Run("未知の種別でエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseType("unknown_type"); err == nil {
			t.Error("未知の種別でエラーが返るべき")
		}
	})

	t.Run("空文字列でエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseType(""); err == nil {
			t.Error("空文字列でエラーが返るべき")
		}
	})
}

// TestParseCategory はParseCategory関数を検証する。
func TestParseCategory(t *testing.T) {
	t.Parallel()

	t.Run("全ての通知カテゴリをパースできること", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			input string
			want  Category
		}{
			{"info", CategoryInfo},
			{"success", CategorySuccess},
			{"warning", CategoryWarning},
			{"error", CategoryError},
		}

		for _, tt := range tests {
			got, err := ParseCategory(tt.input)
			if err != nil {
				t.Errorf("ParseCategory(%q)でエラーが発生: %v", tt.input, err)
				continue
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		}
	})

	t.Run("大文字小文字を区別しないこと", func(t *testing.T) {
		t.Parallel()

		got, err := ParseCategory("Warning")
		if err != nil {
			t.Fatalf("ParseCategory()でエラーが発生: %v", err)
		}
		if got != CategoryWarning {
			t.Errorf("ParseCategory(%q) = %q, want %q", "Warning", got, CategoryWarning)
		}
	})

	t.Run("未知のカテゴリでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseCategory("critical"); err == nil {
			t.Error("未知のカテゴリでエラーが返るべき")
		}
	})
}

// TestOutgoingNotificationJSON はJSONシリアライズを検証する。
func TestOutgoingNotificationJSON(t *testing.T) {
	t.Parallel()

	t.Run("全フィールドが小文字スネークケースのキーで出力されること", func(t *testing.T) {
		t.Parallel()

		n := OutgoingNotification{
			ID:             "notif-1",
			TournamentID:   "tournament-1",
			TournamentName: "春季トーナメント",
			Message:        "ラウンド1が開始されました",
			Type:           TypeRoundStart,
			Category:       CategoryInfo,
			CreatedAt:      "2026-08-31T12:00:00Z",
			IsRead:         false,
		}

		var decoded map[string]any
		if err := json.Unmarshal([]byte(n.JSON()), &decoded); err != nil {
			t.Fatalf("JSON()の出力がパースできません: %v", err)
		}

		wantKeys := []string{"id", "tournament_id", "tournament_name", "message", "type", "category", "created_at", "is_read"}
		for _, key := range wantKeys {
			if _, ok := decoded[key]; !ok {
				t.Errorf("キー %q がJSON出力に含まれていません", key)
			}
		}

		if decoded["type"] != "round_start" {
			t.Errorf("type = %v, want %q", decoded["type"], "round_start")
		}
		if decoded["category"] != "info" {
			t.Errorf("category = %v, want %q", decoded["category"], "info")
		}
		if decoded["is_read"] != false {
			t.Errorf("is_read = %v, want false", decoded["is_read"])
		}
	})

	t.Run("種別とカテゴリが小文字で出力されること", func(t *testing.T) {
		t.Parallel()

		n := OutgoingNotification{
			Type:     TypeMatchResult,
			Category: CategorySuccess,
		}

		s := n.JSON()
		if !strings.Contains(s, `"type":"match_result"`) {
			t.Errorf("typeが小文字で出力されていません: %s", s)
		}
		if !strings.Contains(s, `"category":"success"`) {
			t.Errorf("categoryが小文字で出力されていません: %s", s)
		}
	})
}
