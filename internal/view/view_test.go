package view

import (
	"testing"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

var (
	me    = models.User{ID: "me", Name: "Ana Souza"}
	bruno = models.User{ID: "bruno", Name: "Bruno Lima"}
	carla = models.User{ID: "carla", Name: "Carla Transportes"}
	dario = models.User{ID: "dario", Name: "Dário Fretes"}
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, saoPaulo)
}

func chatWith(id string, other models.User, archived bool, msgs ...models.Message) *models.Chat {
	return &models.Chat{
		ID:           id,
		Participants: []models.User{me, other},
		Messages:     msgs,
		Archived:     archived,
	}
}

func msg(id, sender string, ts time.Time, read bool) models.Message {
	return models.Message{ID: id, SenderID: sender, Timestamp: ts, Read: read}
}

func fixtureChats() []*models.Chat {
	return []*models.Chat{
		chatWith("c1", bruno, false, msg("1", "bruno", at(10, 9, 0), false)),
		chatWith("c2", carla, true, msg("2", "carla", at(12, 9, 0), true)),
		chatWith("c3", dario, false),
		chatWith("c4", bruno, false, msg("3", "me", at(11, 9, 0), false)),
	}
}

func ids(chats []*models.Chat) []string {
	out := make([]string, len(chats))
	for i, c := range chats {
		out[i] = c.ID
	}
	return out
}

func TestFilterChats(t *testing.T) {
	chats := fixtureChats()

	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, ids(FilterChats(chats, "me", "", FilterAll)))
	assert.Equal(t, []string{"c1"}, ids(FilterChats(chats, "me", "", FilterUnread)))
	assert.Equal(t, []string{"c2"}, ids(FilterChats(chats, "me", "", FilterArchived)))
	assert.Equal(t, []string{"c1", "c4"}, ids(FilterChats(chats, "me", "BRUNO", FilterAll)))
	assert.Equal(t, []string{"c3"}, ids(FilterChats(chats, "me", "dário", FilterAll)))
	assert.Empty(t, FilterChats(chats, "me", "ana", FilterAll), "search never matches the current user")
}

func TestParseChatFilter(t *testing.T) {
	f, err := ParseChatFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseChatFilter("Unread")
	require.NoError(t, err)
	assert.Equal(t, FilterUnread, f)

	_, err = ParseChatFilter("starred")
	assert.True(t, apperrors.IsValidation(err))
}

func TestSortChats(t *testing.T) {
	chats := fixtureChats()
	chats = append(chats, chatWith("c5", carla, false))

	sorted := SortChats(chats)
	assert.Equal(t, []string{"c2", "c4", "c1", "c3", "c5"}, ids(sorted))
	assert.Equal(t, "c1", chats[0].ID, "input order is untouched")
}

func TestGroupMessagesByDate(t *testing.T) {
	messages := []models.Message{
		msg("1", "bruno", at(10, 9, 0), true),
		msg("2", "bruno", at(10, 9, 1), true),
		msg("3", "me", at(10, 9, 2), true),
		msg("4", "bruno", at(10, 23, 30), true),
		msg("5", "bruno", at(11, 0, 10), true),
		msg("6", "bruno", at(11, 0, 11), true),
	}

	groups := GroupMessagesByDate(messages, saoPaulo)
	require.Len(t, groups, 2)

	assert.Equal(t, at(10, 0, 0), groups[0].Date)
	require.Len(t, groups[0].Messages, 4)
	var avatars []bool
	for _, m := range groups[0].Messages {
		avatars = append(avatars, m.ShowAvatar)
	}
	assert.Equal(t, []bool{true, false, true, true}, avatars)

	require.Len(t, groups[1].Messages, 2)
	assert.True(t, groups[1].Messages[0].ShowAvatar, "a new date restarts the run")
	assert.False(t, groups[1].Messages[1].ShowAvatar)
}

func TestGroupMessagesUsesLocalDate(t *testing.T) {
	// 01:30 UTC on the 11th is still the 10th in São Paulo.
	late := time.Date(2024, time.March, 11, 1, 30, 0, 0, time.UTC)
	groups := GroupMessagesByDate([]models.Message{
		msg("1", "bruno", at(10, 20, 0), true),
		msg("2", "bruno", late, true),
	}, saoPaulo)
	require.Len(t, groups, 1)

	groups = GroupMessagesByDate([]models.Message{
		msg("1", "bruno", at(10, 20, 0), true),
		msg("2", "bruno", late, true),
	}, time.UTC)
	assert.Len(t, groups, 2)
}

func TestFormatChatTime(t *testing.T) {
	now := at(14, 15, 0) // Thursday

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"same day", at(14, 8, 5), "8:05 AM"},
		{"yesterday late", at(13, 23, 59), "Yesterday"},
		{"two days back", at(12, 10, 0), "Tue"},
		{"six days back", at(8, 10, 0), "Fri"},
		{"seven days back", at(7, 10, 0), "Mar 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatChatTime(tt.t, now, saoPaulo, English))
		})
	}

	assert.Equal(t, "Ontem", FormatChatTime(at(13, 9, 0), now, saoPaulo, Portuguese))
	assert.Equal(t, "08:05", FormatChatTime(at(14, 8, 5), now, saoPaulo, Portuguese))
	assert.Equal(t, "07/03", FormatChatTime(at(7, 10, 0), now, saoPaulo, LocaleFor("pt-BR")))
}

func TestFormatRelative(t *testing.T) {
	now := at(14, 15, 0)

	assert.Equal(t, "now", FormatRelative(now.Add(-59*time.Second), now))
	assert.Equal(t, "1m", FormatRelative(now.Add(-time.Minute), now))
	assert.Equal(t, "59m", FormatRelative(now.Add(-59*time.Minute), now))
	assert.Equal(t, "1h", FormatRelative(now.Add(-time.Hour), now))
	assert.Equal(t, "23h", FormatRelative(now.Add(-23*time.Hour-59*time.Minute), now))
	assert.Equal(t, "1d", FormatRelative(now.Add(-24*time.Hour), now))
	assert.Equal(t, "9d", FormatRelative(now.Add(-9*24*time.Hour), now))
}

func TestSummaries(t *testing.T) {
	now := at(14, 15, 0)
	chats := SortChats(fixtureChats())

	rows := Summaries(chats, "me", now, saoPaulo, English)
	require.Len(t, rows, 4)

	assert.Equal(t, "c2", rows[0].Chat.ID)
	assert.Equal(t, carla.Name, rows[0].Other.Name)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "Tue", rows[0].TimeLabel)

	assert.Equal(t, "c1", rows[2].Chat.ID)
	assert.Equal(t, 1, rows[2].Unread)

	assert.Equal(t, "c3", rows[3].Chat.ID)
	assert.Nil(t, rows[3].LastMessage)
	assert.Empty(t, rows[3].TimeLabel)
}
