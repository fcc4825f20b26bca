package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserRolePredicates(t *testing.T) {
	base := User{ID: 1, RoleName: DefaultRoleName, RoleLevel: RoleLevelUser}
	admin := base.WithRole("admin", RoleLevelAdmin)
	super := base.WithRole("super_admin", RoleLevelSuperAdmin)

	assert.False(t, base.IsAdmin())
	assert.True(t, admin.IsAdmin())
	assert.True(t, super.IsAdmin())

	assert.False(t, admin.IsSuperAdmin())
	assert.True(t, super.IsSuperAdmin())

	assert.False(t, base.HasRoleLevel(80))
	assert.True(t, super.HasRoleLevel(80))
	// Absent level denies by default.
	assert.False(t, User{}.HasRoleLevel(1))

	assert.Equal(t, admin.IsAdmin(), admin.CanManageUsers())
	assert.Equal(t, admin.IsAdmin(), admin.CanVerifyInspections())
	assert.Equal(t, super.IsSuperAdmin(), super.CanManageOrganizations())
}

func TestUserCopyOnWrite(t *testing.T) {
	u := User{ID: 1, IsActive: true}
	now := time.Now().UTC()

	stamped := u.WithLastLogin(now)
	assert.Nil(t, u.LastLoginAt, "original must be untouched")
	assert.Equal(t, now, *stamped.LastLoginAt)

	off := u.Deactivated()
	assert.True(t, u.IsActive)
	assert.False(t, off.IsActive)
}

func TestPhotoIsImage(t *testing.T) {
	mime := "image/jpeg"
	assert.True(t, Photo{MimeType: &mime}.IsImage())

	pdf := "application/pdf"
	assert.False(t, Photo{MimeType: &pdf}.IsImage())
	assert.False(t, Photo{}.IsImage())
}

func TestPhotoSoftDelete(t *testing.T) {
	p := Photo{ID: 7}
	now := time.Now().UTC()
	del := p.Deleted(3, now)

	assert.False(t, p.IsDeleted, "original must be untouched")
	assert.True(t, del.IsDeleted)
	assert.Equal(t, uint64(3), *del.DeletedBy)
	assert.Equal(t, now, *del.DeletedAt)
}

func TestStatusForScores(t *testing.T) {
	assert.Equal(t, InspectionStatusGood, StatusForScores(4, 4, 4))
	assert.Equal(t, InspectionStatusGood, StatusForScores(5, 3, 3))
	// Sum 10 is the highest average still below 3.5.
	assert.Equal(t, InspectionStatusNeedsWork, StatusForScores(4, 3, 3))
	assert.Equal(t, InspectionStatusNeedsWork, StatusForScores(3, 3, 3))
	assert.Equal(t, InspectionStatusNeedsWork, StatusForScores(2, 4, 4))
	assert.Equal(t, InspectionStatusUnacceptable, StatusForScores(1, 5, 5))
	assert.Equal(t, InspectionStatusUnacceptable, StatusForScores(5, 5, 1))
}
