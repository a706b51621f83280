package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/models"
)

// BuildPrompts renders one independent analysis prompt per configured role.
// Each prompt embeds the full digest verbatim; no role's prompt depends on
// another role's output.
func BuildPrompts(now time.Time, digest models.Digest, roles []common.RoleConfig) []models.RolePrompt {
	prompts := make([]models.RolePrompt, 0, len(roles))
	for _, role := range roles {
		prompts = append(prompts, models.RolePrompt{
			Role:   role.Name,
			Prompt: buildRolePrompt(now, digest, role),
		})
	}
	return prompts
}

func buildRolePrompt(now time.Time, digest models.Digest, role common.RoleConfig) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Time: %s. You are %s.\n\n", now.Format("2006-01-02 15:04 MST"), role.Persona)

	sb.WriteString("Today's market data:\n")
	sb.WriteString(digest.Rendered)
	sb.WriteString("\n\n")

	if len(digest.News) > 0 {
		sb.WriteString("Recent headlines:\n")
		for _, line := range FormatNews(digest.News) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Structure your answer with these numbered sections:\n")
	for i, section := range role.Sections {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, section)
	}

	limit := role.WordLimit
	if limit <= 0 {
		limit = 400
	}
	fmt.Fprintf(&sb, "\nKeep the full response under %d words. Reference concrete price levels from the data.\n", limit)

	return sb.String()
}
