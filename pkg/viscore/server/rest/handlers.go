package rest

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kgeyst.com/viscore/pkg/viscore/domain"
)

// testCaseView is what list/create endpoints return per test case: the image path is reduced to its
// base name because clients fetch images through the /uploads route, not by filesystem path.
type testCaseView struct {
	ID                  int    `json:"id"`
	ImagePath           string `json:"image_path"`
	ExpectedDescription string `json:"expected_description"`
}

func newTestCaseView(testCase *domain.TestCase) testCaseView {
	return testCaseView{
		ID:                  testCase.ID,
		ImagePath:           filepath.Base(testCase.ImagePath),
		ExpectedDescription: testCase.ExpectedDescription,
	}
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_provider":         s.viscore.Provider(),
		"similarity_threshold": s.viscore.Threshold(),
	})
}

func (s *Server) getTestCases(c *gin.Context) {
	testCases, err := s.viscore.TestCases()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	views := make([]testCaseView, 0, len(testCases))
	for _, testCase := range testCases {
		views = append(views, newTestCaseView(testCase))
	}
	c.JSON(http.StatusOK, gin.H{
		"test_cases": views,
		"count":      len(views),
	})
}

func (s *Server) addTestCase(c *gin.Context) {
	if strings.Contains(c.ContentType(), "application/json") {
		s.addTestCaseFromURL(c)
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is too large"})
		return
	}
	description := c.PostForm("description")
	file, err := fileHeader.Open()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer func() {
		_ = file.Close()
	}()
	imageData, err := io.ReadAll(file)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	testCase, err := s.viscore.AddTestCase(fileHeader.Filename, imageData, description)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Test case added successfully",
		"test_case": newTestCaseView(testCase),
	})
}

func (s *Server) addTestCaseFromURL(c *gin.Context) {
	var request struct {
		ImageURL    string `json:"image_url"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
		return
	}
	testCase, err := s.viscore.AddTestCaseFromURL(request.ImageURL, request.Description)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Test case added successfully",
		"test_case": newTestCaseView(testCase),
	})
}

func (s *Server) deleteTestCase(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test case id"})
		return
	}
	if err := s.viscore.DeleteTestCase(id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test case deleted successfully"})
}

func (s *Server) clearTestCases(c *gin.Context) {
	if err := s.viscore.ClearTestCases(); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All test cases cleared"})
}

func (s *Server) importFromPage(c *gin.Context) {
	var request struct {
		PageURL string `json:"page_url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
		return
	}
	testCases, err := s.viscore.ImportFromPage(request.PageURL)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	views := make([]testCaseView, 0, len(testCases))
	for _, testCase := range testCases {
		views = append(views, newTestCaseView(testCase))
	}
	c.JSON(http.StatusCreated, gin.H{
		"imported":   len(views),
		"test_cases": views,
	})
}

func (s *Server) runTests(c *gin.Context) {
	// The body is optional: an empty body means "use the configured threshold".
	var request struct {
		SimilarityThreshold float64 `json:"similarity_threshold"`
	}
	_ = c.ShouldBindJSON(&request)
	result, err := s.viscore.RunTests(request.SimilarityThreshold)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) testSingleImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer func() {
		_ = file.Close()
	}()
	imageData, err := io.ReadAll(file)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	description, err := s.viscore.DescribeImage(fileHeader.Filename, imageData)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

func (s *Server) getResultHistory(c *gin.Context) {
	names, err := s.viscore.ResultHistory()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"results": names})
}

func (s *Server) getResult(c *gin.Context) {
	result, err := s.viscore.ResultByName(c.Param("name"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// abortWithError translates domain error kinds to HTTP status codes; everything else is a 500.
func (s *Server) abortWithError(c *gin.Context, err error) {
	s.logger.Log("request failed: " + err.Error())
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
