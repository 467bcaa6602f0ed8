package conversation

import (
	"fmt"
	"strings"

	"order-card-bot/internal/entity"
	"order-card-bot/pkg/extractor"
)

const (
	msgHelp = "Available commands:\n" +
		"/config - set up Trello credentials\n" +
		"/order - start a new batch of order PDFs\n" +
		"/done - finish the current collection\n" +
		"/preview - review collected drafts\n" +
		"/commit - create every draft on the board\n" +
		"/search <term> - find an existing card\n" +
		"/addchk <n> - add a checklist to draft n\n" +
		"/cancel - abandon the current step"

	msgWelcome          = "Hi! Let's connect your Trello board first."
	msgAskKey           = "Send your Trello API key."
	msgAskToken         = "Now send your Trello token."
	msgAskBoard         = "Finally, send the board ID."
	msgInvalidCredField = "That doesn't look right. Send it again without spaces."
	msgCredentialsSaved = "Credentials saved. Send /order to start."
	msgConfigureFirst   = "Configure your Trello credentials first with /config."

	msgCancelled       = "Cancelled."
	msgNothingToCancel = "Nothing to cancel."
	msgNothingToFinish = "There is nothing to finish right now."

	msgCollecting       = "Send the order PDFs. Send /done when finished."
	msgCollectingHint   = "Send a PDF or /done to finish."
	msgNotPDF           = "Only PDF documents are accepted here."
	msgNoDrafts         = "There are no drafts. Send /order to start."
	msgDraftNotFound    = "Draft not found. It may have been committed or cleared."
	msgStorageFailed    = "Could not find or save the draft. Try again."
	msgIdleFile         = "I'm not expecting files right now. Use /order or an attachment button first."
	msgRemoteFailed     = "Trello request failed: %s"
	msgAskDate          = "Send the due date as dd/mm/yyyy."
	msgInvalidDate      = "Invalid date. Use dd/mm/yyyy, for example 25/12/2024."
	msgAskComment       = "Send the comment text."
	msgEmptyComment     = "The comment cannot be empty. Send the comment text."
	msgAskTitle         = "Send the new title."
	msgEmptyTitle       = "The title cannot be empty. Send the new title."
	msgAskBody          = "Send the new description."
	msgEmptyBody        = "The description cannot be empty. Send the new description."
	msgAskChecklistName = "Send the checklist name."
	msgEmptyChecklist   = "The checklist name cannot be empty. Send the checklist name."
	msgAskItems         = "Send the items in one message, separated by --\nExample: cut -- print -- pack"
	msgNoItems          = "No items found. Separate items with --"
	msgChooseDraft      = "Which draft should get the checklist?"
	msgAskAttachments   = "Send the files to attach. Send /done when finished."
	msgAttachHint       = "Send a file or /done to finish."
	msgNoAttachments    = "No files received; the draft is unchanged."
	msgSelectHint       = "Use the buttons above, then press Finish."
	msgChoiceExpired    = "That option is no longer available. Open the menu again."
	msgAskSearchTerm    = "Send part of the card name to search for."
	msgNoCards          = "No cards match %q."
	msgSearchExpired    = "That search result expired. Run /search again."
	msgCommitStarted    = "Creating %d card(s)..."
	msgCommitAborted    = "Commit aborted, drafts were kept: %s"
)

const checklistDelimiter = "--"

func formatDraft(index int, d *entity.Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", index+1, d.Title)
	if d.Edited {
		b.WriteString(" (edited)")
	}
	b.WriteString("\n")

	if d.HasDue() {
		due := d.DueRaw
		if parsed, err := extractor.ParseDue(d.DueISO); err == nil {
			due = extractor.FormatDate(parsed)
		}
		fmt.Fprintf(&b, "Due: %s\n", due)
	} else {
		b.WriteString("Due: not set\n")
	}

	if d.Body != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Body)
	}
	if d.Comment != "" {
		fmt.Fprintf(&b, "\nComment: %s\n", d.Comment)
	}
	for _, cl := range d.Checklists {
		fmt.Fprintf(&b, "\nChecklist %s:\n", cl.Name)
		for _, item := range cl.Items {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	if len(d.Members) > 0 {
		fmt.Fprintf(&b, "\nMembers: %s\n", collaboratorNames(d.Members))
	}
	if len(d.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", collaboratorNames(d.Labels))
	}
	if len(d.Attachments) > 0 {
		fmt.Fprintf(&b, "Attachments: %d\n", len(d.Attachments))
	}
	return strings.TrimRight(b.String(), "\n")
}

func collaboratorNames(set []entity.Collaborator) string {
	names := make([]string, 0, len(set))
	for _, c := range set {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func formatReport(r *entity.CommitReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done: %d created, %d failed.", len(r.Created), len(r.Failed))
	if len(r.Created) > 0 {
		b.WriteString("\n\nCreated:")
		for _, name := range r.Created {
			fmt.Fprintf(&b, "\n- %s", name)
		}
	}
	if len(r.Failed) > 0 {
		b.WriteString("\n\nFailed:")
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "\n- %s: %s", f.Name, f.Reason)
		}
	}
	return b.String()
}

func editMenu(index int) [][]Choice {
	i := fmt.Sprint(index)
	return [][]Choice{
		{{Label: "Due date", Data: "date:" + i}, {Label: "Comment", Data: "comment:" + i}},
		{{Label: "Title", Data: "title:" + i}, {Label: "Description", Data: "body:" + i}},
		{{Label: "Checklist", Data: "checklist:" + i}, {Label: "Attachments", Data: "attach:" + i}},
		{{Label: "Members", Data: "members:" + i}, {Label: "Labels", Data: "labels:" + i}},
		{{Label: "Back to preview", Data: "preview"}},
	}
}
