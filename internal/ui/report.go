// Package ui отрисовывает отчет сигнального движка для терминала.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skalibog/signalengine/internal/analysis/aggregator"
	"github.com/skalibog/signalengine/internal/analysis/indicators"
	"github.com/skalibog/signalengine/internal/config"
	"github.com/skalibog/signalengine/pkg/models"
)

// Основные цвета
var (
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")
	mutedColor     = lipgloss.Color("#999999")
)

type styles struct {
	app     lipgloss.Style
	title   lipgloss.Style
	header  lipgloss.Style
	section lipgloss.Style
	footer  lipgloss.Style
	buy     lipgloss.Style
	sell    lipgloss.Style
	neutral lipgloss.Style
}

func newStyles(color bool, width int) styles {
	s := styles{
		app:     lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).Width(width),
		title:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		section: lipgloss.NewStyle().Padding(0, 1),
		footer:  lipgloss.NewStyle().Padding(0, 1),
		buy:     lipgloss.NewStyle().Bold(true),
		sell:    lipgloss.NewStyle().Bold(true),
		neutral: lipgloss.NewStyle(),
	}
	if !color {
		return s
	}

	s.app = s.app.BorderForeground(primaryColor)
	s.title = s.title.Foreground(lipgloss.Color("#ffffff")).Background(primaryColor)
	s.header = s.header.Foreground(lipgloss.Color("#ffffff")).Background(secondaryColor)
	s.footer = s.footer.Foreground(mutedColor)
	s.buy = s.buy.Foreground(successColor)
	s.sell = s.sell.Foreground(errorColor)
	s.neutral = s.neutral.Foreground(warningColor)
	return s
}

// Renderer форматирует отчеты согласно настройкам UI
type Renderer struct {
	cfg    config.UIConfig
	styles styles
}

// NewRenderer создает отрисовщик отчета
func NewRenderer(cfg config.UIConfig) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 72
	}
	return &Renderer{cfg: cfg, styles: newStyles(cfg.Color, cfg.Width)}
}

// Render возвращает отчет в виде текстового блока
func (r *Renderer) Render(rep *aggregator.Report) string {
	st := r.styles

	blocks := []string{
		st.title.Render(fmt.Sprintf("%s %s  профиль %s", rep.Symbol, rep.Timeframe, rep.Profile)),
		r.summary(rep),
	}

	if rep.Status != aggregator.StatusOK {
		blocks = append(blocks, st.footer.Render(fmt.Sprintf("Недостаточно данных: %d свечей", rep.Candles)))
		return st.app.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
	}

	blocks = append(blocks, r.quality(rep))
	if r.cfg.ShowContributions {
		blocks = append(blocks, r.contributions(rep))
	}
	if r.cfg.ShowStructure {
		blocks = append(blocks, r.structure(rep))
	}
	if len(rep.Reasons) > 0 {
		blocks = append(blocks, r.section("ПРИЧИНЫ", rep.Reasons))
	}

	return st.app.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func (r *Renderer) summary(rep *aggregator.Report) string {
	return r.styles.section.Render(fmt.Sprintf("Цена: %v  Сигнал: %s  Счет: %.1f  Сила: %s  Конфлюенс: %d",
		models.RoundPrice(rep.Price, 8),
		r.directionText(rep.Direction),
		rep.Score,
		rep.Strength,
		rep.Confluence))
}

func (r *Renderer) quality(rep *aggregator.Report) string {
	q := rep.Quality
	lines := []string{
		fmt.Sprintf("Оценка: %s (%.1f), шкала %s, фильтров пройдено %d/%d",
			q.Grade, q.Score, q.Ladder, q.PassedFilters, len(q.Filters)),
	}
	if rep.Tradeable() {
		lines = append(lines, r.styles.buy.Render("Сигнал пригоден для торговли"))
	} else {
		lines = append(lines, r.styles.neutral.Render("Сигнал не пригоден для торговли"))
	}
	return r.section("КАЧЕСТВО", lines)
}

func (r *Renderer) contributions(rep *aggregator.Report) string {
	lines := make([]string, 0, len(rep.Contributions))
	for _, c := range rep.Contributions {
		if c.Points == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-12s %+6.1f  %s", c.Name, c.Points, c.Reason))
	}
	if len(lines) == 0 {
		lines = append(lines, "нет вкладов")
	}
	return r.section("ИНДИКАТОРЫ", lines)
}

func (r *Renderer) structure(rep *aggregator.Report) string {
	s := rep.Structure
	if !s.Signal.Ready() {
		return r.section("СТРУКТУРА", []string{"недостаточно свечей"})
	}

	lines := []string{
		fmt.Sprintf("Сигнал: %s (%.1f), уверенность %.0f%%", r.directionText(s.Signal), s.Score, s.Confidence*100),
		fmt.Sprintf("Тренд: %s, зона: %s, сессия: %s", s.Trend.Trend, s.Zone.Zone, s.Session.Name),
	}
	if s.StopLoss > 0 && s.TakeProfit > 0 {
		lines = append(lines, fmt.Sprintf("Стоп: %v  Цель: %v",
			models.RoundPrice(s.StopLoss, 8), models.RoundPrice(s.TakeProfit, 8)))
	}
	return r.section("СТРУКТУРА", lines)
}

func (r *Renderer) section(title string, lines []string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		r.styles.header.Render(title),
		r.styles.section.Render(strings.Join(lines, "\n")),
	)
}

func (r *Renderer) directionText(s indicators.Signal) string {
	switch s {
	case indicators.SignalStrongBuy:
		return r.styles.buy.Render("СИЛЬНАЯ ПОКУПКА")
	case indicators.SignalBuy, indicators.SignalBullish:
		return r.styles.buy.Render("ПОКУПКА")
	case indicators.SignalStrongSell:
		return r.styles.sell.Render("СИЛЬНАЯ ПРОДАЖА")
	case indicators.SignalSell, indicators.SignalBearish:
		return r.styles.sell.Render("ПРОДАЖА")
	case indicators.SignalInsufficient:
		return r.styles.neutral.Render("НЕТ ДАННЫХ")
	default:
		return r.styles.neutral.Render("НЕЙТРАЛЬНО")
	}
}
