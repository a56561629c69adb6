package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/metrics"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/report"
)

// Embed colours.
const (
	ColorInfo    = 0x4c9aff
	ColorAlready = 0xffc857
	ColorBlurple = 0x5865F2
	ColorRed     = 0xED4245
	ColorGreen   = 0x57F287
)

const (
	msgGuildOnly      = "This command can only be used in a server."
	msgGenericError   = "Something went wrong, sorry 💛"
	msgRateLimited    = "You're going a little fast. Take a breath and try again in a moment 💙"
	msgUnknownTopic   = "I don’t have a coping exercise for that yet — more are coming soon 💙"
	msgNoResponses    = "Something went wrong — no responses available for this topic 💛"
	msgNothingRemove  = "You don't have any journal entries to remove."
	msgCheckedInTitle = "🧠 Daily Check-In Logged"
	msgCheckedInFoot  = "Thank you for checking in. You’re doing great. 💙"
	msgAlreadyTitle   = "🧠 Daily Check-In Already Logged"
	msgAlreadyBody    = "You’ve already checked in today.\n\nThank you for staying consistent — try again tomorrow. 💙"
)

// Request is a slash command invocation stripped of transport details.
// Option values are as decoded from the interaction payload.
type Request struct {
	Command  string
	Owner    models.Owner
	UserName string
	Options  map[string]any
}

func (r Request) String(name string) string {
	switch v := r.Options[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func (r Request) Int(name string) int {
	switch v := r.Options[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Reply is an ephemeral response: text, an embed, a file, or text with a
// file.
type Reply struct {
	Content  string
	Embed    *discordgo.MessageEmbed
	Filename string
	FileText string
	Outcome  string
}

func textReply(msg, outcome string) Reply {
	return Reply{Content: msg, Outcome: outcome}
}

func embedReply(e *discordgo.MessageEmbed, outcome string) Reply {
	return Reply{Embed: e, Outcome: outcome}
}

func errorEmbed(msg, outcome string) Reply {
	return embedReply(&discordgo.MessageEmbed{Description: msg, Color: ColorRed}, outcome)
}

func deliveryReply(d report.Delivery, color int, footer string) Reply {
	if !d.Inline {
		return Reply{Content: d.Note, Filename: d.Filename, FileText: d.Text, Outcome: metrics.OutcomeOK}
	}
	e := &discordgo.MessageEmbed{Title: d.Title, Description: d.Body, Color: color}
	if footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embedReply(e, metrics.OutcomeOK)
}

// Handler turns requests into replies. It never touches the gateway.
type Handler struct {
	svc *commands.Service
	rec metrics.Recorder
}

func NewHandler(svc *commands.Service, rec metrics.Recorder) *Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Handler{svc: svc, rec: rec}
}

// Handle runs one command. Unexpected errors are logged and answered with a
// generic message.
func (h *Handler) Handle(req Request) Reply {
	var (
		reply Reply
		err   error
	)
	switch req.Command {
	case CmdDailyCheckIn:
		reply, err = h.checkIn(req)
	case CmdCheckInHistory:
		reply, err = h.history(req)
	case CmdCheckInStats:
		reply, err = h.stats(req)
	case CmdJournal:
		reply, err = h.journal(req)
	case CmdJournalList:
		reply, err = h.journalList(req)
	case CmdJournalView:
		reply, err = h.journalView(req)
	case CmdJournalRemove:
		reply, err = h.journalRemove(req)
	case CmdCope:
		reply, err = h.cope(req)
	default:
		err = fmt.Errorf("unknown command %q", req.Command)
	}

	if err != nil {
		logger.Error("command failed", "command", req.Command, "owner", req.Owner.String(), "error", err)
		return textReply(msgGenericError, metrics.OutcomeError)
	}
	return reply
}

// common maps the errors every command shares. ok is false for anything
// the caller must handle or treat as unexpected.
func common(err error) (Reply, bool) {
	switch {
	case errors.Is(err, commands.ErrGuildRequired):
		return textReply(msgGuildOnly, metrics.OutcomeRejected), true
	case commands.IsValidation(err):
		return errorEmbed(validationMessage(err), metrics.OutcomeRejected), true
	}
	return Reply{}, false
}

func validationMessage(err error) string {
	var v *commands.ValidationError
	if errors.As(err, &v) {
		return models.Capitalize(v.Message[:1]) + v.Message[1:] + "."
	}
	return err.Error()
}

func (h *Handler) checkIn(req Request) (Reply, error) {
	entry, err := h.svc.RecordCheckIn(req.Owner, req.String(OptMood))
	if errors.Is(err, commands.ErrAlreadyCheckedIn) {
		return embedReply(&discordgo.MessageEmbed{
			Title:       msgAlreadyTitle,
			Description: msgAlreadyBody,
			Color:       ColorAlready,
		}, metrics.OutcomeRejected), nil
	}
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}

	h.rec.RecordCheckIn(string(entry.Mood))
	return embedReply(&discordgo.MessageEmbed{
		Title:       msgCheckedInTitle,
		Description: "**Mood:** " + entry.Mood.Label(),
		Color:       ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: msgCheckedInFoot},
	}, metrics.OutcomeOK), nil
}

func (h *Handler) history(req Request) (Reply, error) {
	days := req.Int(OptDays)
	entries, err := h.svc.CheckInHistory(req.Owner, days)
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return deliveryReply(report.DeliverHistory(report.History(req.UserName, days, entries)), ColorInfo, ""), nil
}

func (h *Handler) stats(req Request) (Reply, error) {
	days := req.Int(OptDays)
	tally, err := h.svc.CheckInStats(req.Owner, days)
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return deliveryReply(report.DeliverStats(report.Stats(req.UserName, days, tally)), ColorInfo, ""), nil
}

func (h *Handler) journal(req Request) (Reply, error) {
	entry, err := h.svc.CreateJournal(req.Owner, req.String(OptContent))
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}

	h.rec.RecordJournalEntry()
	return embedReply(&discordgo.MessageEmbed{
		Description: fmt.Sprintf("Your journal entry has been saved (ID **%d**). 💛\n\n"+
			"You can view your journals using:\n"+
			"• `/myjournallist`\n"+
			"• `/myjournals <id>` if you know a specific entry ID", entry.ID),
		Color: ColorBlurple,
	}, metrics.OutcomeOK), nil
}

func (h *Handler) journalList(req Request) (Reply, error) {
	entries, err := h.svc.ListJournal(req.Owner)
	if err != nil {
		return Reply{}, err
	}
	if len(entries) == 0 {
		return embedReply(&discordgo.MessageEmbed{Description: report.NoJournal, Color: ColorBlurple}, metrics.OutcomeOK), nil
	}
	d := report.DeliverJournal(report.JournalList(entries), report.JournalListPlain(entries))
	return deliveryReply(d, ColorBlurple, report.JournalFooter), nil
}

func notFound(rawID string) Reply {
	return errorEmbed(fmt.Sprintf("No journal entry with ID **%s** was found.", strings.TrimSpace(rawID)), metrics.OutcomeNotFound)
}

func (h *Handler) journalView(req Request) (Reply, error) {
	raw := req.String(OptEntryID)
	entry, err := h.svc.GetJournal(req.Owner, raw)
	switch {
	case errors.Is(err, commands.ErrJournalEmpty):
		return errorEmbed(report.NoJournal, metrics.OutcomeNotFound), nil
	case errors.Is(err, commands.ErrEntryNotFound):
		return notFound(raw), nil
	}
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}

	return embedReply(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Journal Entry #%d", entry.ID),
		Description: entry.Content,
		Color:       ColorBlurple,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Created at " + entry.Timestamp},
	}, metrics.OutcomeOK), nil
}

func (h *Handler) journalRemove(req Request) (Reply, error) {
	raw := req.String(OptEntryID)
	id, err := h.svc.DeleteJournal(req.Owner, raw)
	switch {
	case errors.Is(err, commands.ErrJournalEmpty):
		return errorEmbed(msgNothingRemove, metrics.OutcomeNotFound), nil
	case errors.Is(err, commands.ErrEntryNotFound):
		return notFound(raw), nil
	}
	if r, ok := common(err); ok {
		return r, nil
	}
	if err != nil {
		return Reply{}, err
	}

	return embedReply(&discordgo.MessageEmbed{
		Description: fmt.Sprintf("Your journal entry (ID **%d**) has been removed.", id),
		Color:       ColorGreen,
	}, metrics.OutcomeOK), nil
}

func (h *Handler) cope(req Request) (Reply, error) {
	resp, err := h.svc.Cope(req.String(OptTopic))
	switch {
	case errors.Is(err, commands.ErrUnknownTopic):
		return textReply(msgUnknownTopic, metrics.OutcomeNotFound), nil
	case errors.Is(err, commands.ErrNoResponses):
		return textReply(msgNoResponses, metrics.OutcomeNotFound), nil
	case err != nil:
		return Reply{}, err
	}

	return embedReply(&discordgo.MessageEmbed{
		Title:       resp.Title,
		Description: resp.Description,
		Color:       coping.ParseColor(resp.Color),
		Fields: []*discordgo.MessageEmbedField{{
			Name:  "More Support",
			Value: fmt.Sprintf("[%s](%s)", resp.LinkText, resp.LinkURL),
		}},
	}, metrics.OutcomeOK), nil
}

// Suggest answers an autocomplete request for the focused option.
func (h *Handler) Suggest(req Request, focused string) []*discordgo.ApplicationCommandOptionChoice {
	h.rec.RecordAutocomplete(req.Command)
	current := req.String(focused)

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch {
	case focused == OptEntryID && (req.Command == CmdJournalView || req.Command == CmdJournalRemove):
		for _, id := range h.svc.JournalIDSuggestions(req.Owner, current) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: "ID " + id, Value: id})
		}
	case focused == OptTopic && req.Command == CmdCope:
		for _, topic := range h.svc.TopicSuggestions(current) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: topic, Value: topic})
		}
	}
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return choices
}
