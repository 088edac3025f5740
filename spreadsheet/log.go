package spreadsheet

import "github.com/sirupsen/logrus"

// defaultLogger is used by a Sheet created without WithLogger. It is a
// separate logrus.Logger fixed at WarnLevel, so the Debug lines this package
// emits are not written through it; logrus's global level does not affect it.
var defaultLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}()

// invalidationLogThreshold is the number of direct dependents of the edited
// cell at or above which a cache invalidation walk is worth a Debug line;
// small cascades are the common case and would just add noise.
const invalidationLogThreshold = 8
