package models

import "time"

type User struct {
	ID        int    `db:"pk,autoincrement"`
	FirstName string `db:"not_null"`
	LastName  string
	Email     string `db:"unique"`
	Score     float64
	IsActive  bool
	Avatar    []byte
	Orders    []Order
	age       int
}

type Order struct {
	ID     string `db:"pk"`
	UserID int    `db:"ref=users:id"`
	Total  float64
}

type MultiA struct {
	ID   int64
	Name string
}

func (MultiA) TableName() string { return "multi_a" }

type MultiB struct {
	ID    int64
	Label string `db:"column=display_label"`
}

type PointerReceiver struct {
	ID    int64
	Title string
}

func (p *PointerReceiver) TableName() string { return "ptr_table" }

type ModelWithIgnored struct {
	ID      int64
	Name    string
	Score   float64
	Tags    string   `db:"-"`
	Friends []string `db:"-"`
}

type BadTime struct {
	CreatedAt time.Time
}

type BadAutoInc struct {
	ID string `db:"autoincrement"`
}

type Unsupp struct {
	Ch chan int
}
