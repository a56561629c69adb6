// Package bot connects the command service to Discord slash commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/metrics"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/ratelimit"
)

type Options struct {
	// DevGuild registers commands to one guild instead of globally.
	DevGuild string
	OwnerID  int64
	Limiter  *ratelimit.Limiter
	Recorder metrics.Recorder
}

type Bot struct {
	session *discordgo.Session
	handler *Handler
	opts    Options
	rec     metrics.Recorder
}

func New(token string, handler *Handler, opts Options) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("bot token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	rec := opts.Recorder
	if rec == nil {
		rec = metrics.Nop{}
	}
	b := &Bot{session: s, handler: handler, opts: opts, rec: rec}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	return b, nil
}

// Ready reports whether the gateway session is up.
func (b *Bot) Ready() error {
	if !b.session.DataReady {
		return errors.New("gateway not ready")
	}
	return nil
}

// Run opens the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	<-ctx.Done()
	logger.Info("closing discord session")
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info("logged in", "user", r.User.String(), "id", r.User.ID, "owner_id", b.opts.OwnerID)

	scope := "global"
	if b.opts.DevGuild != "" {
		scope = "guild " + b.opts.DevGuild
	}
	cmds, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.opts.DevGuild, Definitions())
	if err != nil {
		logger.Error("failed to sync commands", "scope", scope, "error", err)
		return
	}
	logger.Info("synced slash commands", "count", len(cmds), "scope", scope)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// toRequest flattens the interaction. It returns the focused option name
// for autocomplete.
func toRequest(i *discordgo.InteractionCreate) (Request, string) {
	data := i.ApplicationCommandData()
	user := interactionUser(i)

	req := Request{Command: data.Name, Options: map[string]any{}}
	if user != nil {
		req.Owner = models.NewOwner(i.GuildID, user.ID)
		req.UserName = user.String()
	}

	focused := ""
	for _, opt := range data.Options {
		req.Options[opt.Name] = opt.Value
		if opt.Focused {
			focused = opt.Name
		}
	}
	return req, focused
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	start := time.Now()
	req, _ := toRequest(i)
	requestID := uuid.NewString()

	var reply Reply
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic handling command", "request_id", requestID, "command", req.Command, "panic", r)
			reply = textReply(msgGenericError, metrics.OutcomeError)
			b.respond(s, i, requestID, reply)
		}
		b.rec.RecordCommand(req.Command, reply.Outcome, time.Since(start))
		logger.Info("command handled",
			"request_id", requestID,
			"command", req.Command,
			"tenant", req.Owner.TenantID,
			"outcome", reply.Outcome,
			"took", time.Since(start),
		)
	}()

	if b.opts.Limiter != nil && !b.opts.Limiter.Allow(req.Owner.UserID) {
		reply = textReply(msgRateLimited, metrics.OutcomeRateLimited)
	} else {
		reply = b.handler.Handle(req)
	}
	b.respond(s, i, requestID, reply)
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, requestID string, reply Reply) {
	if err := s.InteractionRespond(i.Interaction, ResponseFor(reply)); err != nil {
		logger.Error("failed to send reply", "request_id", requestID, "error", err)
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req, focused := toRequest(i)
	choices := b.handler.Suggest(req, focused)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Debug("failed to send autocomplete", "command", req.Command, "error", err)
	}
}

// ResponseFor builds the ephemeral interaction response for reply.
func ResponseFor(reply Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
	if reply.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{reply.Embed}
	}
	if reply.Filename != "" {
		data.Files = []*discordgo.File{{
			Name:        reply.Filename,
			ContentType: "text/plain; charset=utf-8",
			Reader:      strings.NewReader(reply.FileText),
		}}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}
