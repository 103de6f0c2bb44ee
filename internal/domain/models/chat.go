package models

type ChatState int

const (
	StateIdle ChatState = iota
	StateAwaitingDiningHall
)
