package ui

import (
	"fmt"
	"strings"

	"facequiz/internal/quiz"
	"facequiz/internal/util/format"
)

func (m Model) View() string {
	var body string
	switch m.phase {
	case phaseLoading:
		body = m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("모델을 불러오는 중...")
	case phaseUpload:
		body = m.viewUpload()
	case phaseAnalyzing:
		body = m.viewOverlay()
	case phaseResult:
		body = m.viewResult()
	case phaseError:
		body = m.styles.Error.Render(m.errMsg)
	}
	return m.viewHeader() + "\n\n" + m.styles.Box.Render(body) + "\n\n" + m.viewKeys()
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("facequiz · 강아지상 vs 고양이상")
	sub := m.styles.Subtitle.Render("사진 한 장으로 알아보는 나의 동물상")
	return title + "\n" + sub
}

func (m Model) viewUpload() string {
	return m.styles.Header.Render("사진을 선택하세요") + "\n\n" + m.input.View()
}

func (m Model) viewOverlay() string {
	u := m.overlay
	line := m.styles.Header.Render(u.Icon + " " + u.Label)
	bar := fmt.Sprintf("%s %s", m.bar.ViewAs(float64(u.Percent)/100), m.styles.Body.Render(format.Percent(u.Percent)))
	return m.styles.Overlay.Render(line + "\n\n" + bar)
}

func (m Model) viewResult() string {
	v := m.verdict
	headline := m.styles.Header.Render(v.Headline)
	switch v.Kind {
	case quiz.KindDog:
		headline = m.styles.Dog.Render(v.Headline)
	case quiz.KindCat:
		headline = m.styles.Cat.Render(v.Headline)
	}

	var b strings.Builder
	b.WriteString(headline)
	b.WriteString("\n\n")
	if v.Title != "" {
		b.WriteString(m.styles.Header.Render(v.Title))
		b.WriteString("\n")
	}
	if v.Description != "" {
		b.WriteString(m.styles.Body.Render(v.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Faint.Render(v.ConfidenceLabel))
	b.WriteString("\n")
	b.WriteString(m.conf.View())
	b.WriteString(" ")
	b.WriteString(m.styles.Body.Render(format.Percent(v.Confidence)))
	return b.String()
}

func (m Model) viewKeys() string {
	themeKey := "t"
	if m.phase == phaseUpload {
		themeKey = "ctrl+t"
	}
	keys := []string{
		fmt.Sprintf("%s: %s", themeKey, m.state.theme.ButtonLabel()),
	}
	switch m.phase {
	case phaseUpload:
		keys = append([]string{"enter: 분석"}, keys...)
		keys = append(keys, "esc: 종료")
	case phaseAnalyzing, phaseResult:
		keys = append([]string{"r: " + quiz.RetryLabel}, keys...)
		keys = append(keys, "q: 종료")
	case phaseError:
		if m.state.svc != nil {
			keys = append([]string{"r: " + quiz.RetryLabel}, keys...)
		}
		keys = append(keys, "q: 종료")
	default:
		keys = append(keys, "q: 종료")
	}
	return m.styles.Key.Render(strings.Join(keys, " • "))
}
