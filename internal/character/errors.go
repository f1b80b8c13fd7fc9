package character

import "errors"

var (
	ErrCharacterNotFound = errors.New("character not found")

	// experience / stats
	ErrInvalidAmount     = errors.New("experience amount must be positive")
	ErrInvalidStat       = errors.New("invalid stat name")
	ErrNoPointsAvailable = errors.New("no stat points available")

	// quest transitions
	ErrUnknownQuest      = errors.New("unknown quest")
	ErrQuestAlreadyTaken = errors.New("quest already active or completed")
	ErrQuestNotActive    = errors.New("quest not active")

	// shadow transitions
	ErrUnknownShadow         = errors.New("unknown shadow")
	ErrShadowAlreadyEquipped = errors.New("shadow already equipped")
	ErrEquipLimitReached     = errors.New("shadow equip limit reached")
)
