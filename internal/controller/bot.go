package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/controller/gridimage"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// GridSource is the read side of the availability coordinator.
type GridSource interface {
	QueryGrid(ctx context.Context) (model.Grid, error)
}

// BotController serves read-only schedule commands over Telegram.
type BotController struct {
	bot    *bot.Bot
	grid   GridSource
	now    func() time.Time
	logger *zap.Logger
}

func NewBotController(botInstance *bot.Bot, grid GridSource, location *time.Location, logger *zap.Logger) *BotController {
	c := &BotController{
		bot:    botInstance,
		grid:   grid,
		now:    func() time.Time { return time.Now().In(location) },
		logger: logger.Named("telegram"),
	}

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/horarios", bot.MatchTypePrefix, c.handleTimes)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/grade", bot.MatchTypePrefix, c.handleGrid)

	return c
}

// Serve blocks polling updates until ctx is done.
func (c *BotController) Serve(ctx context.Context) error {
	if err := c.setCommands(ctx); err != nil {
		c.logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	c.logger.Info("Starting bot")
	c.bot.Start(ctx)
	return ctx.Err()
}

func (c *BotController) String() string {
	return "telegram-bot"
}

func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "Apresentação e comandos"},
		{Command: "horarios", Description: "Horários livres da semana (graduado|oficial)"},
		{Command: "grade", Description: "Imagem da grade semanal (graduado|oficial)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands})
	return err
}

const helpText = "Barbearia: agenda semanal\n\n" +
	"/horarios [graduado|oficial] - horários livres da semana\n" +
	"/grade [graduado|oficial] - grade semanal em imagem\n\n" +
	"Agendamentos são feitos pelo sistema web."

func (c *BotController) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID, helpText)
}

func (c *BotController) handleTimes(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	categories, err := categoriesArg(update.Message.Text)
	if err != nil {
		c.send(ctx, b, chatID, "Categoria inválida. Use graduado ou oficial.")
		return
	}

	grid, err := c.grid.QueryGrid(ctx)
	if err != nil {
		c.logger.Error("Failed to query grid", zap.Error(err))
		c.send(ctx, b, chatID, "Não foi possível consultar a agenda. Tente novamente.")
		return
	}

	var sb strings.Builder
	for i, category := range categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(formatAvailable(grid, category))
	}
	c.send(ctx, b, chatID, sb.String())
}

func (c *BotController) handleGrid(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	categories, err := categoriesArg(update.Message.Text)
	if err != nil {
		c.send(ctx, b, chatID, "Categoria inválida. Use graduado ou oficial.")
		return
	}

	grid, err := c.grid.QueryGrid(ctx)
	if err != nil {
		c.logger.Error("Failed to query grid", zap.Error(err))
		c.send(ctx, b, chatID, "Não foi possível consultar a agenda. Tente novamente.")
		return
	}

	for _, category := range categories {
		img, err := gridimage.Render(grid, category, c.now())
		if err != nil {
			c.logger.Error("Failed to render grid", zap.String("category", string(category)), zap.Error(err))
			c.send(ctx, b, chatID, "Não foi possível gerar a imagem da grade.")
			return
		}

		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   &models.InputFileUpload{Filename: "grade.png", Data: bytes.NewReader(img)},
			Caption: fmt.Sprintf("Grade %s", category),
		})
		if err != nil {
			c.logger.Error("Failed to send grid image", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

func (c *BotController) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		c.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// categoriesArg reads the optional category after the command. No argument
// selects every category.
func categoriesArg(text string) ([]model.Category, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return model.Categories, nil
	}
	category, err := model.ParseCategory(fields[1])
	if err != nil {
		return nil, err
	}
	return []model.Category{category}, nil
}

func formatAvailable(grid model.Grid, category model.Category) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Horários livres (%s)\n", category)

	for _, weekday := range model.Weekdays {
		var free []string
		for _, s := range grid[weekday][category] {
			if s.Status == model.SlotStatusAvailable {
				free = append(free, string(s.Time))
			}
		}
		if len(free) == 0 {
			fmt.Fprintf(&sb, "%s: -\n", weekday)
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", weekday, strings.Join(free, ", "))
	}
	return sb.String()
}
