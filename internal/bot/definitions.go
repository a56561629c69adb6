package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
)

// Command names.
const (
	CmdDailyCheckIn   = "dailycheckin"
	CmdCheckInHistory = "checkinhistory"
	CmdCheckInStats   = "checkinstats"
	CmdJournal        = "journal"
	CmdJournalList    = "myjournallist"
	CmdJournalView    = "myjournals"
	CmdJournalRemove  = "removejournal"
	CmdCope           = "cope"
)

// Option names.
const (
	OptMood    = "mood"
	OptDays    = "days"
	OptContent = "content"
	OptEntryID = "entry_id"
	OptTopic   = "topic"
)

func daysOption() *discordgo.ApplicationCommandOption {
	minDays := float64(constants.MinHistoryDays)
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        OptDays,
		Description: "Number of days to look back (max 30).",
		Required:    true,
		MinValue:    &minDays,
		MaxValue:    float64(constants.MaxHistoryDays),
	}
}

func moodChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Moods))
	for _, m := range models.Moods {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: m.Label(), Value: string(m)})
	}
	return choices
}

// Definitions is the slash command set registered on ready.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdDailyCheckIn,
			Description: "Log your daily mood check-in.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptMood,
				Description: "Select the mood that best describes how you're feeling today.",
				Required:    true,
				Choices:     moodChoices(),
			}},
		},
		{
			Name:        CmdCheckInHistory,
			Description: "View your daily check-in history over the past number of days.",
			Options:     []*discordgo.ApplicationCommandOption{daysOption()},
		},
		{
			Name:        CmdCheckInStats,
			Description: "View stats of your moods over the last number of days.",
			Options:     []*discordgo.ApplicationCommandOption{daysOption()},
		},
		{
			Name:        CmdJournal,
			Description: "Privately write a journal entry.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptContent,
				Description: "Your private journal entry",
				Required:    true,
			}},
		},
		{
			Name:        CmdJournalList,
			Description: "View a list of your saved journal entries.",
		},
		{
			Name:        CmdJournalView,
			Description: "View a specific journal entry by ID.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         OptEntryID,
				Description:  "The ID of the journal entry you want to view.",
				Required:     true,
				Autocomplete: true,
			}},
		},
		{
			Name:        CmdJournalRemove,
			Description: "Delete one of your journal entries.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         OptEntryID,
				Description:  "The journal ID you want to delete.",
				Required:     true,
				Autocomplete: true,
			}},
		},
		{
			Name:        CmdCope,
			Description: "Get a simple coping exercise based on what you're feeling.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         OptTopic,
				Description:  "Choose a coping topic",
				Required:     true,
				Autocomplete: true,
			}},
		},
	}
}
