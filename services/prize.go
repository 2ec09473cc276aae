package services

import "esports-arena/models"

// CalculateTotalPrize is the advertised prize: the pre-aggregated pool plus the kill pool if every slot
// scores one kill. A missing kill reward or zero capacity contributes nothing.
func CalculateTotalPrize(t *models.Tournament) int64 {
	if t == nil {
		return 0
	}
	total := t.PrizePool
	if t.PerKillCoins > 0 && t.MaxPlayers > 0 {
		total += t.PerKillCoins * int64(t.MaxPlayers)
	}
	return total
}

// PositionPrizeTotal sums the position prize table. It is display-only and never replaces PrizePool.
func PositionPrizeTotal(slots []models.PrizeSlot) int64 {
	var total int64
	for _, s := range slots {
		total += s.Amount
	}
	return total
}
