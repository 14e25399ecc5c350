package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
)

func rbacRouter(guard gin.HandlerFunc, claims *models.JWTClaims) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.GET("/", guard, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func perform(router *gin.Engine) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	student := &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent}
	if got := perform(rbacRouter(RequireKind(models.KindStudent), student)).Code; got != http.StatusNoContent {
		t.Fatalf("student should pass, got %d", got)
	}
	if got := perform(rbacRouter(RequireKind(models.KindAdmin), student)).Code; got != http.StatusForbidden {
		t.Fatalf("student should be forbidden, got %d", got)
	}
	if got := perform(rbacRouter(RequireKind(models.KindStudent), nil)).Code; got != http.StatusUnauthorized {
		t.Fatalf("missing claims should be unauthorized, got %d", got)
	}
}

func TestRequireInstructorRoleIsMembershipCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	both := &models.JWTClaims{
		UserID: "ins-1",
		Kind:   models.KindInstructor,
		Roles:  models.RoleSet{models.RoleInstructor, models.RoleAdviser},
	}
	if got := perform(rbacRouter(RequireInstructorRole(models.RoleAdviser), both)).Code; got != http.StatusNoContent {
		t.Fatalf("instructor holding adviser capability should pass, got %d", got)
	}
	if got := perform(rbacRouter(RequireInstructorRole(models.RoleInstructor), both)).Code; got != http.StatusNoContent {
		t.Fatalf("capability set holds both roles at once, got %d", got)
	}

	plain := &models.JWTClaims{
		UserID: "ins-2",
		Kind:   models.KindInstructor,
		Roles:  models.RoleSet{models.RoleInstructor},
	}
	if got := perform(rbacRouter(RequireInstructorRole(models.RoleAdviser), plain)).Code; got != http.StatusForbidden {
		t.Fatalf("instructor without adviser capability should be forbidden, got %d", got)
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	admin := &models.JWTClaims{
		UserID:      "adm-1",
		Kind:        models.KindAdmin,
		Role:        models.AdminRoleAdmin,
		Permissions: []string{models.PermGenerateReport},
	}
	if got := perform(rbacRouter(RequirePermission(models.PermGenerateReport), admin)).Code; got != http.StatusNoContent {
		t.Fatalf("granted permission should pass, got %d", got)
	}
	if got := perform(rbacRouter(RequirePermission(models.PermManageAccounts), admin)).Code; got != http.StatusForbidden {
		t.Fatalf("missing permission should be forbidden, got %d", got)
	}

	super := &models.JWTClaims{UserID: "superadmin", Kind: models.KindAdmin, Role: models.AdminRoleSuperAdmin}
	if got := perform(rbacRouter(RequirePermission(models.PermManageAccounts), super)).Code; got != http.StatusNoContent {
		t.Fatalf("super admin implicitly holds every permission, got %d", got)
	}
	if got := perform(rbacRouter(RequireSuperAdmin(), admin)).Code; got != http.StatusForbidden {
		t.Fatalf("regular admin is not super admin, got %d", got)
	}
}
