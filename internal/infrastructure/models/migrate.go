package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Merchant{},
		&MerchantApprovalLog{},
		&Store{},
		&Product{},
		&Coupon{},
		&CouponIssue{},
		&TableSession{},
		&CartItem{},
		&KitchenOrder{},
		&StoreOrderCounter{},
		&Wallet{},
		&WalletTransaction{},
		&Payment{},
		&TopupPackage{},
		&GameSession{},
		&MerchantCustomer{},
		&TransactionEvent{},
		&Event{},
		&TicketType{},
		&Ticket{},
		&Settlement{},
		&SettlementItem{},
	}
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
