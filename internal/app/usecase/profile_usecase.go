package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/fardannozami/streak-bot/internal/domain"
)

// Friend codes avoid characters that are easy to misread in chat.
const (
	friendCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	friendCodeLength   = 8
	maxLifePathLength  = 32
)

type EnsureProfileUsecase struct {
	repo  domain.ProfileRepository
	clock Clock
}

func NewEnsureProfileUsecase(repo domain.ProfileRepository, clock Clock) *EnsureProfileUsecase {
	return &EnsureProfileUsecase{repo: repo, clock: clock}
}

// Execute returns the user's profile, creating it on first contact. A changed
// display name is written back.
func (uc *EnsureProfileUsecase) Execute(ctx context.Context, userID, name string) (*domain.Profile, error) {
	profile, err := uc.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile != nil {
		if name == "" || profile.DisplayName == name {
			return profile, nil
		}
		profile.DisplayName = name
		if err := uc.repo.UpsertProfile(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	code, err := gonanoid.Generate(friendCodeAlphabet, friendCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate friend code: %w", err)
	}
	profile = &domain.Profile{
		UserID:      userID,
		DisplayName: name,
		FriendCode:  code,
		Tier:        domain.TierFree,
		CreatedAt:   uc.clock.Today(),
	}
	if err := uc.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type SetLifePathUsecase struct {
	repo    domain.ProfileRepository
	profile *EnsureProfileUsecase
}

func NewSetLifePathUsecase(repo domain.ProfileRepository, profile *EnsureProfileUsecase) *SetLifePathUsecase {
	return &SetLifePathUsecase{repo: repo, profile: profile}
}

func (uc *SetLifePathUsecase) Execute(ctx context.Context, userID, name, path string) (string, error) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return "Usage: #path <name>, for example #path athlete", nil
	}
	if len(path) > maxLifePathLength {
		return fmt.Sprintf("Life path names are at most %d characters.", maxLifePathLength), nil
	}

	profile, err := uc.profile.Execute(ctx, userID, name)
	if err != nil {
		return "", err
	}
	if profile.LifePath == path {
		return fmt.Sprintf("%s is already on the %s path.", profile.DisplayName, path), nil
	}
	profile.LifePath = path
	if err := uc.repo.UpsertProfile(ctx, profile); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is now on the %s path 🧭 Your next check-in puts you on that board.", profile.DisplayName, path), nil
}

type AddFriendUsecase struct {
	repo    domain.ProfileRepository
	profile *EnsureProfileUsecase
}

func NewAddFriendUsecase(repo domain.ProfileRepository, profile *EnsureProfileUsecase) *AddFriendUsecase {
	return &AddFriendUsecase{repo: repo, profile: profile}
}

func (uc *AddFriendUsecase) Execute(ctx context.Context, userID, name, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	profile, err := uc.profile.Execute(ctx, userID, name)
	if err != nil {
		return "", err
	}
	if code == "" {
		return fmt.Sprintf("Your friend code is %s. Share it, or add someone with #friend <code>.", profile.FriendCode), nil
	}

	friend, err := uc.repo.FindByFriendCode(ctx, code)
	if err != nil {
		return "", err
	}
	if friend == nil {
		return fmt.Sprintf("No one has the friend code %s.", code), nil
	}
	if friend.UserID == userID {
		return "That is your own friend code 😄", nil
	}
	if slices.Contains(profile.Friends, friend.UserID) {
		return fmt.Sprintf("You and %s are already friends.", friend.DisplayName), nil
	}

	if err := uc.repo.AddFriendship(ctx, userID, friend.UserID); err != nil {
		return "", err
	}
	return fmt.Sprintf("You and %s are now friends 🤝", friend.DisplayName), nil
}
