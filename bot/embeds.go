package bot

import (
	"fmt"
	"strings"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x2ECC71

// progressBar renders n out of total as a ten-segment bar.
func progressBar(n, total int) string {
	if total == 0 {
		return strings.Repeat("░", 10)
	}
	filled := n * 10 / total
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func clanListEmbed(clans []model.Clan) *discordgo.MessageEmbed {
	var lines []string
	for _, clan := range clans {
		status := "closed"
		if clan.Recruitment {
			status = "open"
		}
		lines = append(lines, fmt.Sprintf("%s**%s** `%s` TH%d+ (%s, recruitment %s)",
			emojiPrefix(&clan), clan.Name, clan.Tag, clan.RequiredTH, clan.Type, status))
	}
	if len(lines) == 0 {
		lines = append(lines, "No clans registered.")
	}
	return &discordgo.MessageEmbed{
		Title:       "Alliance Clans",
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
	}
}

func clanInfoEmbed(clan *model.Clan) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s%s (%s)", emojiPrefix(clan), clan.Name, clan.Tag),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: string(clan.Type), Inline: true},
			{Name: "Requirement", Value: fmt.Sprintf("TH%d+", clan.RequiredTH), Inline: true},
			{Name: "Recruitment", Value: fmt.Sprintf("%t", clan.Recruitment), Inline: true},
		},
	}
	if clan.Language != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Language", Value: clan.Language, Inline: true,
		})
	}
	for _, check := range clan.Checks {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   checkDisplayName(check.Name),
			Value:  fmt.Sprintf("min %d", check.MinValue),
			Inline: true,
		})
	}
	if clan.Messages != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Key information",
			Value: strings.ReplaceAll(clan.Messages, "|", "\n"),
		})
	}
	return embed
}

func emojiPrefix(clan *model.Clan) string {
	if clan.EmojiName == "" {
		return ""
	}
	return clan.EmojiName + " "
}

func checkDisplayName(name string) string {
	if display, ok := backend.CheckNames[name]; ok {
		return display
	}
	return name
}

func timeoutEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Interview timed out",
		Description: "You did not answer in time. Press the restart button below to start over.",
		Color:       embedColor,
	}
}

func failEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Interview failed",
		Description: "Too many invalid answers. Press the restart button below to start over.",
		Color:       embedColor,
	}
}

func maintenanceEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Maintenance break",
		Description: maintenanceMessage + " Press the restart button below to start over.",
		Color:       embedColor,
	}
}

// welcomeGreetings feeds the webhook welcome message; one is picked at
// random per verified member.
var welcomeGreetings = []string{
	"Welcome to the family, %s!",
	"Glad to have you with us, %s!",
	"%s just joined the alliance, say hi!",
	"A warm welcome to %s!",
}
