package dto

import "time"

// OrderView é um pedido já decodificado para exibição no dashboard.
// Bet/Result carregam os descritores legíveis; Result é "-" enquanto a
// rodada não liquida.
type OrderView struct {
	ID             string    `json:"id"`
	GameFamily     string    `json:"game_family"`
	IssueNumber    string    `json:"issue_number"`
	Bet            string    `json:"bet"`
	Result         string    `json:"result"`
	AmountCents    int64     `json:"amount_cents"`
	FeeCents       int64     `json:"fee_cents"`
	WinAmountCents int64     `json:"win_amount_cents"`
	State          string    `json:"state"`
	Outcome        string    `json:"outcome,omitempty"` // veredito independente, vazio se WAITING
	CreatedAt      time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Data  []OrderView `json:"data"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type StatisticsResponse struct {
	CurrentWinStreak int   `json:"current_win_streak"`
	MaxWinStreak     int   `json:"max_win_streak"`
	MaxBetCents      int64 `json:"max_bet_cents"`
	MaxWinCents      int64 `json:"max_win_cents"`
	TotalBetCents    int64 `json:"total_bet_cents"`
	TotalWinCents    int64 `json:"total_win_cents"`
	Orders           int   `json:"orders"`
}

// VerifyResponse compara os agregados recomputados localmente com os
// pré-agregados do backend da plataforma.
type VerifyResponse struct {
	Local    StatisticsResponse `json:"local"`
	Platform StatisticsResponse `json:"platform"`
	Match    bool               `json:"match"`
}
