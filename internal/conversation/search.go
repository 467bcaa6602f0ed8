package conversation

import (
	"fmt"
	"strings"

	"order-card-bot/pkg/board"
	"order-card-bot/pkg/extractor"
	"order-card-bot/pkg/textfold"
)

const maxSearchResults = 20

func (s *Service) startSearch(t *turn, term string) error {
	s.leaveFlow(t)

	if strings.TrimSpace(term) == "" {
		t.sess.enter(ModeSearch, StageAwaitingTerm)
		return t.say(msgAskSearchTerm)
	}
	return s.runSearch(t, term)
}

// runSearch lists board cards whose name contains term, ignoring case and accents.
func (s *Service) runSearch(t *turn, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return t.say(msgAskSearchTerm)
	}

	client, creds, ok, err := s.boardClient(t)
	if !ok {
		return err
	}
	cards, err := client.Cards(t.ctx, creds.BoardID)
	if err != nil {
		return s.remoteFailed(t, "get_cards", err)
	}

	var matches []board.Card
	for _, c := range cards {
		if textfold.Contains(c.Name, term) {
			matches = append(matches, c)
		}
	}

	s.leaveFlow(t)
	if len(matches) == 0 {
		t.sess.SearchResults = nil
		return t.say(fmt.Sprintf(msgNoCards, term))
	}

	text := fmt.Sprintf("%d card(s) match %q:", len(matches), term)
	if len(matches) > maxSearchResults {
		text = fmt.Sprintf("%d card(s) match %q, showing the first %d:", len(matches), term, maxSearchResults)
		matches = matches[:maxSearchResults]
	}
	t.sess.SearchResults = matches

	rows := make([][]Choice, 0, len(matches))
	for i, c := range matches {
		rows = append(rows, []Choice{{Label: c.Name, Data: fmt.Sprintf("card:%d", i)}})
	}
	return t.ask(text, rows)
}

func (s *Service) showCard(t *turn, i int) error {
	if i >= len(t.sess.SearchResults) {
		return t.say(msgSearchExpired)
	}
	card := t.sess.SearchResults[i]

	s.leaveFlow(t)
	t.sess.CardID = card.ID
	t.sess.CardName = card.Name

	var b strings.Builder
	b.WriteString(card.Name)
	if card.Due != "" {
		if due, err := extractor.ParseDue(card.Due); err == nil {
			fmt.Fprintf(&b, "\nDue: %s", extractor.FormatDate(due))
		}
	}
	if card.Desc != "" {
		fmt.Fprintf(&b, "\n\n%s", card.Desc)
	}
	if card.URL != "" {
		fmt.Fprintf(&b, "\n\n%s", card.URL)
	}

	return t.ask(b.String(), [][]Choice{{
		{Label: "Add checklist", Data: "cardchk"},
		{Label: "Comment", Data: "cardcomment"},
	}})
}
