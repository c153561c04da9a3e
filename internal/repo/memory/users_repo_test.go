package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mkaraca/userhub/internal/domain/user"
	"github.com/mkaraca/userhub/internal/repo/memory"
)

func seed(t *testing.T, r *memory.UsersRepo, name, email string) user.User {
	t.Helper()

	u, err := r.Create(context.Background(), name, email, "hash", nil)

	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}

	return u
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	seed(t, r, "A", "a@x.com")

	_, err := r.Create(ctx, "B", "a@x.com", "otherhash", nil)

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestGetByEmailAndID(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	created := seed(t, r, "A", "a@x.com")

	byEmail, err := r.GetByEmail(ctx, "a@x.com")

	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail ID = %q, want %q", byEmail.ID, created.ID)
	}

	byID, err := r.GetByID(ctx, created.ID)

	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if byID.Email != "a@x.com" {
		t.Fatalf("GetByID email = %q, want %q", byID.Email, "a@x.com")
	}

	_, err = r.GetByEmail(ctx, "nobody@x.com")

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("unknown email err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMergesPartialFields(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	age := 30
	created, err := r.Create(ctx, "A", "a@x.com", "hash", &age)

	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Renamed"

	updated, err := r.Update(ctx, created.ID, user.UpdateUserRequest{Name: &newName})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Renamed" {
		t.Fatalf("name = %q, want %q", updated.Name, "Renamed")
	}

	// omitted fields keep their stored values
	if updated.Email != "a@x.com" {
		t.Fatalf("email overwritten: %q", updated.Email)
	}

	if updated.Age == nil || *updated.Age != 30 {
		t.Fatalf("age overwritten: %v", updated.Age)
	}

	if updated.PasswordHash != "hash" {
		t.Fatalf("password hash changed on update")
	}
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	seed(t, r, "A", "a@x.com")
	other := seed(t, r, "B", "b@x.com")

	taken := "a@x.com"

	_, err := r.Update(ctx, other.ID, user.UpdateUserRequest{Email: &taken})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestDeleteThenGet(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	created := seed(t, r, "A", "a@x.com")

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := r.GetByID(ctx, created.ID)

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}

	if err := r.Delete(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	r := memory.NewUsersRepo()

	err := r.Delete(context.Background(), "missing")

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
