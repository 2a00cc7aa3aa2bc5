package usecases

import "time"

func (u *CouponUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *OrderUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *PaymentUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *MerchantUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *TicketUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *SettlementUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *GameUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *GameUsecase) SetRand(rng func(n int) int) { u.rng = rng }
