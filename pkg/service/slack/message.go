package slack

import (
	"fmt"
	"strings"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/slack-go/slack"
)

// escalationText is the notification fallback. It carries ids and scores only, never observation text.
func escalationText(s *model.RiskSnapshot) string {
	return fmt.Sprintf("%s risk for case %s (score %.1f)", s.TrafficLight, s.CaseID, s.FinalScore)
}

func escalationBlocks(s *model.RiskSnapshot, baseURL string) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf(":red_circle: %s risk: case %s", s.TrafficLight, s.CaseID), false, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Score*\n%.1f", s.FinalScore), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Matrix*\n%s", s.ConfigVersion), false, false),
	}
	summary := slack.NewSectionBlock(nil, fields, nil)

	blocks := []slack.Block{header, summary}

	if len(s.HardRuleHits) > 0 {
		lines := make([]string, 0, len(s.HardRuleHits))
		for _, hit := range s.HardRuleHits {
			lines = append(lines, fmt.Sprintf("• %s (%s)", hit.Label, hit.IndicatorID))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Hard rules*\n"+strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}

	if len(s.Rationale) > 0 {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(s.Rationale, "\n"), false, false),
		))
	}

	if baseURL != "" {
		url := fmt.Sprintf("%s/cases/%s", strings.TrimRight(baseURL, "/"), s.CaseID)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|Open case>", url), false, false),
			nil, nil,
		))
	}

	return blocks
}
