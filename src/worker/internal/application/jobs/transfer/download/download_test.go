package download_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer/download"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GenericDLer", func() {
	var (
		tempDir        string
		outputFilePath string
		audioContent   []byte

		server     *httptest.Server
		statusCode int

		downloader download.GenericDLer
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "download-test-*")
		Expect(err).NotTo(HaveOccurred())

		outputFilePath = filepath.Join(tempDir, "original.mp3")
		audioContent = []byte("the original recording bytes")
		statusCode = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(statusCode)
			_, _ = w.Write(audioContent)
		}))

		downloader = download.NewGenericDLer()
	})

	AfterEach(func() {
		server.Close()
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	Describe("A reachable URL", func() {
		It("saves the response body to the output file", func() {
			Expect(downloader.Download(server.URL, outputFilePath)).To(Succeed())

			saved, err := os.ReadFile(outputFilePath)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(Equal(audioContent))
		})
	})

	Describe("A URL responding with an error status", func() {
		BeforeEach(func() {
			statusCode = http.StatusNotFound
		})

		It("fails without writing the output file", func() {
			Expect(downloader.Download(server.URL, outputFilePath)).NotTo(Succeed())

			_, err := os.Stat(outputFilePath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("An unreachable URL", func() {
		It("fails", func() {
			server.Close()
			Expect(downloader.Download(server.URL, outputFilePath)).NotTo(Succeed())
		})
	})

	Describe("An unwritable output path", func() {
		It("fails", func() {
			badPath := filepath.Join(tempDir, "does", "not", "exist", "original.mp3")
			Expect(downloader.Download(server.URL, badPath)).NotTo(Succeed())
		})
	})
})
