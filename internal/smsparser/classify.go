package smsparser

import (
	"regexp"
	"strings"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// Markers are matched against the lowercased message text.
var (
	withdrawMarker     = regexp.MustCompile(`withdraw`)
	savingsMarker      = regexp.MustCompile(`m-pawa|mpawa`)
	paymentMarker      = regexp.MustCompile(`\blipa\b|pay ?bill`)
	utilityMarker      = regexp.MustCompile(`\bluku\b|\bdawasa\b|\btanesco\b`)
	loanReceivedMarker = regexp.MustCompile(`received a loan|loan (?:has been )?disbursed`)
	loanRepaidMarker   = regexp.MustCompile(`loan repayment|repaid|repayment of`)
	loanProductMarker  = regexp.MustCompile(`songesha`)
	bettingMarker      = regexp.MustCompile(`\b(?:bet|betting|sportpesa|betway|betpawa|meridianbet)\b`)
	purchaseMarker     = regexp.MustCompile(`\bbought\b`)
	airtimeMarker      = regexp.MustCompile(`airtime`)
	bundleMarker       = regexp.MustCompile(`bundle`)
	insuranceMarker    = regexp.MustCompile(`insurance|\bbima\b`)
	cardMarker         = regexp.MustCompile(`\bvisa\b`)
	outgoingMarker     = regexp.MustCompile(`sent to|paid to|transferred to`)
	incomingMarker     = regexp.MustCompile(`received`)
	balanceMarker      = regexp.MustCompile(`balance is`)
	bankMarker         = regexp.MustCompile(`\bbank\b`)

	sentMarker     = regexp.MustCompile(`sent to|paid to|withdraw|bought|deducted from`)
	receivedMarker = regexp.MustCompile(`you have received|received`)
)

type typeRule struct {
	name    string
	matches func(text string) bool
	outcome domain.TransactionType
}

func has(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

func hasAll(res ...*regexp.Regexp) func(string) bool {
	return func(text string) bool {
		for _, re := range res {
			if !re.MatchString(text) {
				return false
			}
		}
		return true
	}
}

// typeRules is evaluated top to bottom and the first match wins. The order
// is the policy: savings withdrawals must be tested before plain withdrawals,
// loan disbursements before the generic incoming-transfer rule, and so on.
var typeRules = []typeRule{
	{"savings withdrawal", hasAll(withdrawMarker, savingsMarker), domain.TypeSavingsWithdrawal},
	{"withdrawal", has(withdrawMarker), domain.TypeWithdrawal},
	{"bill payment", has(paymentMarker), domain.TypeBillPayment},
	{"utility payment", has(utilityMarker), domain.TypeUtilityPayment},
	{"loan received", has(loanReceivedMarker), domain.TypeLoan},
	{"loan repayment", has(loanRepaidMarker), domain.TypeLoanRepayment},
	{"loan product", has(loanProductMarker), domain.TypeLoan},
	{"savings deposit", has(savingsMarker), domain.TypeSavingsDeposit},
	{"betting", has(bettingMarker), domain.TypeBetting},
	{"airtime", hasAll(purchaseMarker, airtimeMarker), domain.TypeAirtime},
	{"bundles", has(bundleMarker), domain.TypeBundles},
	{"insurance", has(insuranceMarker), domain.TypeInsurance},
	{"card", has(cardMarker), domain.TypeOther},
	{"outgoing transfer", has(outgoingMarker), domain.TypeMoneyTransfer},
	{"incoming transfer", has(incomingMarker), domain.TypeMoneyTransfer},
	{"balance check", func(text string) bool {
		return balanceMarker.MatchString(text) &&
			!outgoingMarker.MatchString(text) && !incomingMarker.MatchString(text)
	}, domain.TypeBalanceCheck},
}

// ClassifyType assigns a transaction type. Messages matching no rule are Other.
func ClassifyType(raw string) domain.TransactionType {
	text := strings.ToLower(raw)
	for _, rule := range typeRules {
		if rule.matches(text) {
			return rule.outcome
		}
	}
	return domain.TypeOther
}

type directionRule struct {
	marker  *regexp.Regexp
	outcome domain.Direction
}

var directionRules = []directionRule{
	{sentMarker, domain.DirectionSent},
	{receivedMarker, domain.DirectionReceived},
}

// ClassifyDirection decides whether money left or entered the wallet.
// Messages with neither marker are treated as Sent.
func ClassifyDirection(raw string) domain.Direction {
	text := strings.ToLower(raw)
	for _, rule := range directionRules {
		if rule.marker.MatchString(text) {
			return rule.outcome
		}
	}
	return domain.DirectionSent
}

type channelRule struct {
	matches func(t domain.TransactionType, text string) bool
	outcome domain.Channel
}

var channelRules = []channelRule{
	{func(_ domain.TransactionType, text string) bool { return cardMarker.MatchString(text) }, domain.ChannelVisa},
	{func(t domain.TransactionType, _ string) bool { return t == domain.TypeWithdrawal }, domain.ChannelAgent},
	{func(t domain.TransactionType, _ string) bool {
		return t == domain.TypeBillPayment || t == domain.TypeUtilityPayment
	}, domain.ChannelBusiness},
	{func(_ domain.TransactionType, text string) bool { return bankMarker.MatchString(text) }, domain.ChannelBank},
}

// InferChannel derives the settlement channel from the resolved type and
// the message text.
func InferChannel(t domain.TransactionType, raw string) domain.Channel {
	text := strings.ToLower(raw)
	for _, rule := range channelRules {
		if rule.matches(t, text) {
			return rule.outcome
		}
	}
	return domain.ChannelMobile
}
