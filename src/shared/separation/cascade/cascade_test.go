package cascade_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	testlib "github.com/2highsebas/openarms-backend/src/shared/testing"
	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeNormalizer struct {
	err error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, path string, targetSampleRate int) (audio.Waveform, error) {
	if f.err != nil {
		return audio.Waveform{}, f.err
	}

	return testlib.SineWave(targetSampleRate, 2, 256, 440), nil
}

type fakeInvoker struct {
	err error
}

func (f *fakeInvoker) SampleRate() int {
	return 44100
}

func (f *fakeInvoker) Invoke(ctx context.Context, wave audio.Waveform, outputDir string) (audio.StemSet, error) {
	if f.err != nil {
		return audio.StemSet{}, f.err
	}

	stems := map[audio.StemName]audio.Waveform{}
	for _, name := range audio.StemNames {
		stemPath := filepath.Join(outputDir, audio.StemFileName(name))
		content := []byte("model stem " + string(name))
		if err := os.WriteFile(stemPath, content, os.ModePerm); err != nil {
			return audio.StemSet{}, err
		}

		stems[name] = testlib.SineWave(wave.SampleRate, 2, 256, 220)
	}

	return audio.StemSet{
		SampleRate: wave.SampleRate,
		Stems:      stems,
	}, nil
}

type fakePseudo struct {
	err          error
	skippedStems map[audio.StemName]bool
}

func (f *fakePseudo) Separate(ctx context.Context, inputPath string, outputDir string) error {
	if f.err != nil {
		return f.err
	}

	for _, name := range audio.StemNames {
		if f.skippedStems[name] {
			continue
		}

		stemPath := filepath.Join(outputDir, audio.StemFileName(name))
		content := []byte("filtered stem " + string(name))
		if err := os.WriteFile(stemPath, content, os.ModePerm); err != nil {
			return err
		}
	}

	return nil
}

var _ = Describe("Controller", func() {
	var (
		tempDir    string
		inputPath  string
		outputDir  string
		inputBytes []byte

		normalizer *fakeNormalizer
		invoker    *fakeInvoker
		pseudo     *fakePseudo
		controller cascade.Controller
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "cascade-test-*")
		Expect(err).NotTo(HaveOccurred())

		inputBytes = []byte("the original mixed audio")
		inputPath = filepath.Join(tempDir, "original.mp3")
		Expect(os.WriteFile(inputPath, inputBytes, os.ModePerm)).To(Succeed())

		outputDir = filepath.Join(tempDir, "stems")

		normalizer = &fakeNormalizer{}
		invoker = &fakeInvoker{}
		pseudo = &fakePseudo{}
		controller = cascade.NewController(normalizer, invoker, pseudo)
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	expectCompleteStemSet := func(result cascade.Result) {
		ExpectWithOffset(1, result.StemPaths).To(HaveLen(len(audio.StemNames)))

		for _, name := range audio.StemNames {
			stemPath, ok := result.StemPaths[name]
			ExpectWithOffset(1, ok).To(BeTrue())
			ExpectWithOffset(1, filepath.IsAbs(stemPath)).To(BeTrue())

			info, err := os.Stat(stemPath)
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			ExpectWithOffset(1, info.Size()).To(BeNumerically(">", 0))
		}
	}

	Describe("Model separation succeeds", func() {
		It("reports a high quality model separation", func() {
			result, err := controller.Separate(context.Background(), inputPath, outputDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Outcome).To(Equal(cascade.ModelSeparated))
			Expect(result.HighQuality).To(BeTrue())
			expectCompleteStemSet(result)
		})

		It("clears stale files from a previous run", func() {
			Expect(os.MkdirAll(outputDir, os.ModePerm)).To(Succeed())
			stalePath := filepath.Join(outputDir, "stale.wav")
			Expect(os.WriteFile(stalePath, []byte("stale"), os.ModePerm)).To(Succeed())

			_, err := controller.Separate(context.Background(), inputPath, outputDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(stalePath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("Model separation fails", func() {
		BeforeEach(func() {
			invoker.err = cerr.Error("model exploded")
		})

		It("falls back to the filtered stems", func() {
			result, err := controller.Separate(context.Background(), inputPath, outputDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Outcome).To(Equal(cascade.FilterFallback))
			Expect(result.HighQuality).To(BeFalse())
			expectCompleteStemSet(result)

			vocalsContent, err := os.ReadFile(result.StemPaths[audio.StemVocals])
			Expect(err).NotTo(HaveOccurred())
			Expect(vocalsContent).To(Equal([]byte("filtered stem vocals")))
		})

		Describe("because the input could not be normalized", func() {
			BeforeEach(func() {
				invoker.err = nil
				normalizer.err = cerr.Error("undecodable input")
			})

			It("still falls back to the filtered stems", func() {
				result, err := controller.Separate(context.Background(), inputPath, outputDir)
				Expect(err).NotTo(HaveOccurred())

				Expect(result.Outcome).To(Equal(cascade.FilterFallback))
				expectCompleteStemSet(result)
			})
		})
	})

	Describe("Model and filter separation both fail", func() {
		BeforeEach(func() {
			invoker.err = cerr.Error("model exploded")
			pseudo.err = cerr.Error("ffmpeg exploded")
		})

		It("duplicates the original into every stem slot", func() {
			result, err := controller.Separate(context.Background(), inputPath, outputDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Outcome).To(Equal(cascade.DuplicateFallback))
			Expect(result.HighQuality).To(BeFalse())
			expectCompleteStemSet(result)

			for _, name := range audio.StemNames {
				content, err := os.ReadFile(result.StemPaths[name])
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(Equal(inputBytes))
			}
		})
	})

	Describe("A tier reports success but leaves a stem missing", func() {
		BeforeEach(func() {
			invoker.err = cerr.Error("model exploded")
			pseudo.skippedStems = map[audio.StemName]bool{audio.StemBass: true}
		})

		It("fails with an incomplete output error", func() {
			_, err := controller.Separate(context.Background(), inputPath, outputDir)
			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, separation.IncompleteOutputMark)).To(BeTrue())
		})
	})

	Describe("Unreadable input", func() {
		It("fails fast for a nonexistent file", func() {
			_, err := controller.Separate(context.Background(), filepath.Join(tempDir, "no-such-file.mp3"), outputDir)
			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, separation.DecodeMark)).To(BeTrue())
		})

		It("fails fast for an empty file", func() {
			emptyPath := filepath.Join(tempDir, "empty.mp3")
			Expect(os.WriteFile(emptyPath, nil, os.ModePerm)).To(Succeed())

			_, err := controller.Separate(context.Background(), emptyPath, outputDir)
			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, separation.DecodeMark)).To(BeTrue())
		})

		It("does not attempt any tier", func() {
			_, err := controller.Separate(context.Background(), filepath.Join(tempDir, "no-such-file.mp3"), outputDir)
			Expect(err).To(HaveOccurred())

			_, statErr := os.Stat(outputDir)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})
})
