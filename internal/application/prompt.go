package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
)

const (
	notSpecified       = "Not specified"
	transcriptDivider  = "\n\n---\n\n"
	transcriptDateForm = "Mon Jan 2 2006"
)

// transcript renders entries in the given order, one block per entry, with
// dates shown in loc.
func transcript(entries []*entity.DiaryEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		feeling := e.Feeling
		if strings.TrimSpace(feeling) == "" {
			feeling = notSpecified
		}
		parts = append(parts, fmt.Sprintf("Date: %s, Feeling: %s\nEntry: %s",
			e.CreatedAt.In(loc).Format(transcriptDateForm), feeling, e.Text))
	}
	return strings.Join(parts, transcriptDivider)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// profileContext is background for the generator only.
func profileContext(u *entity.User) string {
	var gender, ethnicity, dob string
	if u != nil {
		gender, ethnicity = u.Gender, u.Ethnicity
		if u.DateOfBirth != nil {
			dob = u.DateOfBirth.Format(transcriptDateForm)
		}
	}
	return "For context, here is some information about the user. Use it to tailor the analysis where relevant, " +
		"but do not state it directly in your response.\n" +
		"- Gender: " + orNotSpecified(gender) + "\n" +
		"- Ethnicity: " + orNotSpecified(ethnicity) + "\n" +
		"- Date of Birth: " + orNotSpecified(dob)
}

func standardPrompt(profile, text string) string {
	var b strings.Builder
	b.WriteString("You are a thoughtful and empathetic journal assistant named The Narrative Weaver.\n")
	b.WriteString(profile)
	b.WriteString("\n\nAnalyze the following diary entries from the user.\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n")
	b.WriteString("Please write a **personalized summary** in distinct sections, highlighting:\n")
	b.WriteString("- **Overall Mindset & Dominant Themes:** What are the main topics or recurring thoughts?\n")
	b.WriteString("- **Emotional Landscape:** What is the general mood, based on both the text and logged feelings?\n")
	b.WriteString("- **Self-Image & Confidence:** How does the user talk about themselves?\n")
	b.WriteString("- **Identified Strengths:** What are some key strengths shown in their actions or thoughts?\n")
	b.WriteString("- **Potential Areas for Growth:** Gently point out a recurring challenge as an opportunity.\n")
	b.WriteString("Make it feel warm and insightful, and base every observation directly on their writing.")
	return b.String()
}

func deeperPrompt(profile, text string) string {
	var b strings.Builder
	b.WriteString("You are an expert psychoanalytic interpreter.\n")
	b.WriteString(profile)
	b.WriteString("\n\nAnalyze the following diary entries through the lens of Freudian theory.\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n")
	b.WriteString("Please provide a **deep psychological analysis** with these sections, only where the entries give evidence:\n")
	b.WriteString("- **Analysis of Potential Defense Mechanisms:** Look for repression, rationalization, escapism and similar patterns.\n")
	b.WriteString("- **Interpretation of Potential Parapraxes (Slips):** Consider any described slips, accidents or difficult incidents.\n")
	b.WriteString("- **Dream Interpretation:** If dreams are mentioned, discuss their possible latent content.\n")
	b.WriteString("- **Subconscious Mind:** Note repetitive behavioural or thought patterns.\n")
	b.WriteString("- **Concluding Insight:** Synthesize the findings into one insight about possible inner conflicts.\n")
	b.WriteString("Use empathetic, professional and cautious language (\"this could suggest...\"). ")
	b.WriteString("This is an interpretive reflection, not a diagnosis; never label the user with a condition.")
	return b.String()
}
