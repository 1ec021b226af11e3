package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type changePasswordRequest struct {
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (g *Gateway) authRoutes(r *gin.RouterGroup, authed gin.HandlerFunc) {
	r.POST("/register", g.register)
	r.POST("/send-verification-code", g.sendVerificationCode)
	r.POST("/verify-email", g.verifyEmail)
	r.POST("/login", g.login)
	r.POST("/logout", g.logout)
	r.POST("/forgot-password", g.forgotPassword)
	r.POST("/resend-password-reset-otp", g.forgotPassword)
	r.POST("/reset-password", g.resetPassword)

	r.GET("/me", authed, g.me)
	r.PUT("/profile", authed, g.updateProfile)
	r.GET("/addresses", authed, g.listAddresses)
	r.POST("/addresses", authed, g.addAddress)
	r.PUT("/addresses/:addressId", authed, g.updateAddress)
	r.DELETE("/addresses/:addressId", authed, g.deleteAddress)
	r.PUT("/addresses/:addressId/default", authed, g.setDefaultAddress)
	r.POST("/change-password/request-otp", authed, g.requestPasswordChange)
	r.POST("/change-password/resend-otp", authed, g.requestPasswordChange)
	r.POST("/change-password", authed, g.changePassword)
}

// setSession mirrors the token into the auth cookie for browser clients.
func (g *Gateway) setSession(c *gin.Context, s *service.Session) {
	if g.config.Auth.Cookie == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(g.config.Auth.Cookie, s.Token, int(g.config.Auth.TokenTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
}

// register godoc
// @Summary Start a registration and mail a verification code
// @Description The account is only created once the code is verified.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "Registration"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /auth/register [post]
func (g *Gateway) register(c *gin.Context) {
	var in service.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	if err := g.services.Auth.Register(c.Request.Context(), in); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":              "Verification code sent to your email. Please verify to complete registration.",
		"requiresVerification": true,
		"email":                in.Email,
	})
}

func (g *Gateway) sendVerificationCode(c *gin.Context) {
	var req emailRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	if err := g.services.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent to your email"})
}

func (g *Gateway) verifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	s, err := g.services.Auth.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		abort(c, err)
		return
	}
	g.setSession(c, s)
	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully. Your account has been created!",
		"user":    s.User,
		"token":   s.Token,
	})
}

// @Summary Exchange email and password for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /auth/login [post]
func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	s, err := g.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abort(c, err)
		return
	}
	g.setSession(c, s)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": s.User, "token": s.Token})
}

func (g *Gateway) logout(c *gin.Context) {
	if g.config.Auth.Cookie != "" {
		c.SetCookie(g.config.Auth.Cookie, "", -1, "/", "", c.Request.TLS != nil, true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (g *Gateway) me(c *gin.Context) {
	u, err := g.services.Auth.Me(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (g *Gateway) updateProfile(c *gin.Context) {
	var patch repository.ProfilePatch
	if err := bindJSON(c, &patch); err != nil {
		abort(c, err)
		return
	}
	u, err := g.services.Auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, patch)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": u})
}

func (g *Gateway) listAddresses(c *gin.Context) {
	addresses, err := g.services.Auth.Addresses(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (g *Gateway) addAddress(c *gin.Context) {
	var in service.AddressInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	a, err := g.services.Auth.AddAddress(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address added successfully", "address": a})
}

func (g *Gateway) updateAddress(c *gin.Context) {
	var in service.AddressInput
	if err := bindJSON(c, &in); err != nil {
		abort(c, err)
		return
	}
	a, err := g.services.Auth.UpdateAddress(c.Request.Context(), currentUser(c).ID, c.Param("addressId"), in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated successfully", "address": a})
}

func (g *Gateway) deleteAddress(c *gin.Context) {
	addresses, err := g.services.Auth.DeleteAddress(c.Request.Context(), currentUser(c).ID, c.Param("addressId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully", "addresses": addresses})
}

func (g *Gateway) setDefaultAddress(c *gin.Context) {
	addresses, err := g.services.Auth.SetDefaultAddress(c.Request.Context(), currentUser(c).ID, c.Param("addressId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated", "addresses": addresses})
}

func (g *Gateway) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	if err := g.services.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset OTP has been sent to your email address."})
}

func (g *Gateway) resetPassword(c *gin.Context) {
	var req resetRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	if err := g.services.Auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. You can now login with your new password."})
}

func (g *Gateway) requestPasswordChange(c *gin.Context) {
	if err := g.services.Auth.RequestPasswordChange(c.Request.Context(), currentUser(c).ID); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password change OTP has been sent to your email address."})
}

func (g *Gateway) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		abort(c, err)
		return
	}
	if err := g.services.Auth.ChangePassword(c.Request.Context(), currentUser(c).ID, req.OTP, req.NewPassword); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully. Please login with your new password."})
}

func (g *Gateway) listCustomers(c *gin.Context) {
	customers, err := g.services.Customers.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (g *Gateway) getCustomer(c *gin.Context) {
	detail, err := g.services.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
